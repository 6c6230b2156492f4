package commands

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeCheck   Type = "check"
	TypeUncheck Type = "uncheck"
	TypeRemove  Type = "remove"
	TypeReset   Type = "reset"
	TypeNotify  Type = "notify"
	TypeRemind  Type = "remind"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text string
}

// CheckArgs targets one task id, or every task when All is set.
type CheckArgs struct {
	Target string
	All    bool
}

type UncheckArgs struct {
	Target string
}

// RemoveArgs targets one task id, or every checked task when Checked is
// set.
type RemoveArgs struct {
	Target  string
	Checked bool
}

type NotifyArgs struct {
	Level   string
	Enabled bool
}

type RemindArgs struct {
	Target string
	In     time.Duration
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Check   *CheckArgs
	Uncheck *UncheckArgs
	Remove  *RemoveArgs
	Notify  *NotifyArgs
	Remind  *RemindArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeCheck:
		return parseCheck(input, args)
	case TypeUncheck:
		return parseUncheck(input, args)
	case TypeRemove:
		return parseRemove(input, args)
	case TypeReset:
		return Command{Type: TypeReset, Raw: input}, nil
	case TypeNotify:
		return parseNotify(input, args)
	case TypeRemind:
		return parseRemind(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text}}, nil
}

func parseCheck(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "check requires a task id or 'all'"}
	}
	target := args[0]
	if strings.EqualFold(target, "all") {
		return Command{Type: TypeCheck, Raw: raw, Check: &CheckArgs{All: true}}, nil
	}
	return Command{Type: TypeCheck, Raw: raw, Check: &CheckArgs{Target: target}}, nil
}

func parseUncheck(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "uncheck requires a task id"}
	}
	return Command{Type: TypeUncheck, Raw: raw, Uncheck: &UncheckArgs{Target: args[0]}}, nil
}

func parseRemove(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remove requires a task id or 'checked'"}
	}
	target := args[0]
	if strings.EqualFold(target, "checked") {
		return Command{Type: TypeRemove, Raw: raw, Remove: &RemoveArgs{Checked: true}}, nil
	}
	return Command{Type: TypeRemove, Raw: raw, Remove: &RemoveArgs{Target: target}}, nil
}

func parseNotify(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "notify requires a level and on|off"}
	}
	var enabled bool
	switch strings.ToLower(args[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("notify state must be on or off, got %q", args[1])}
	}
	return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Level: args[0], Enabled: enabled}}, nil
}

func parseRemind(raw string, args []string) (Command, error) {
	if len(args) < 3 || !strings.EqualFold(args[1], "in") {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "remind requires: remind <id> in <duration>"}
	}
	d, err := time.ParseDuration(args[2])
	if err != nil || d <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid duration %q", args[2])}
	}
	return Command{Type: TypeRemind, Raw: raw, Remind: &RemindArgs{Target: args[0], In: d}}, nil
}
