package update

const helpText = `# todue

A todo list with urgency-aware notifications. Tasks are classified as
overdue, due soon, upcoming, or unscheduled relative to now, and a single
rolling summary notification keeps track of everything you opted in to.

## Keys

| Key | Action |
|-----|--------|
| a | add a task |
| enter | edit the selected task |
| space | toggle checked |
| d | delete the selected task |
| C | check every task |
| D | remove checked tasks |
| R | load the example list |
| 1-4 | toggle notifications per level (overdue, due soon, upcoming, none) |
| / | command palette |
| q | quit |

## Palette commands

- /add <text>
- /check <id> or /check all
- /uncheck <id>
- /remove <id> or /remove checked
- /reset
- /notify <level> on|off
- /remind <id> in <duration> (e.g. /remind example-1 in 45m)

Press any key to close this screen.
`
