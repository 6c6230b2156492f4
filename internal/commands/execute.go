package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Check   func(CheckArgs) (Result, error)
	Uncheck func(UncheckArgs) (Result, error)
	Remove  func(RemoveArgs) (Result, error)
	Reset   func() (Result, error)
	Notify  func(NotifyArgs) (Result, error)
	Remind  func(RemindArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeCheck:
		if handlers.Check == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "check handler not configured"}
		}
		return handlers.Check(*cmd.Check)
	case TypeUncheck:
		if handlers.Uncheck == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "uncheck handler not configured"}
		}
		return handlers.Uncheck(*cmd.Uncheck)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "remove handler not configured"}
		}
		return handlers.Remove(*cmd.Remove)
	case TypeReset:
		if handlers.Reset == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "reset handler not configured"}
		}
		return handlers.Reset()
	case TypeNotify:
		if handlers.Notify == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "notify handler not configured"}
		}
		return handlers.Notify(*cmd.Notify)
	case TypeRemind:
		if handlers.Remind == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "remind handler not configured"}
		}
		return handlers.Remind(*cmd.Remind)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
