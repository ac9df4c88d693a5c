package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	New     func(NewArgs) (Result, error)
	Pin     func(TargetArgs) (Result, error)
	Trash   func(TargetArgs) (Result, error)
	Restore func(TargetArgs) (Result, error)
	Search  func(SearchArgs) (Result, error)
	Sort    func(SortArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Color   func(ColorArgs) (Result, error)
	Remind  func(RemindArgs) (Result, error)
	Ack     func(AckArgs) (Result, error)
	Cleanup func(CleanupArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeNew:
		return dispatch(cmd.Type, handlers.New, cmd.New)
	case TypePin:
		return dispatch(cmd.Type, handlers.Pin, cmd.Target)
	case TypeTrash:
		return dispatch(cmd.Type, handlers.Trash, cmd.Target)
	case TypeRestore:
		return dispatch(cmd.Type, handlers.Restore, cmd.Target)
	case TypeSearch:
		return dispatch(cmd.Type, handlers.Search, cmd.Search)
	case TypeSort:
		return dispatch(cmd.Type, handlers.Sort, cmd.Sort)
	case TypeShow:
		return dispatch(cmd.Type, handlers.Show, cmd.Show)
	case TypeColor:
		return dispatch(cmd.Type, handlers.Color, cmd.Color)
	case TypeRemind:
		return dispatch(cmd.Type, handlers.Remind, cmd.Remind)
	case TypeAck:
		return dispatch(cmd.Type, handlers.Ack, cmd.Ack)
	case TypeCleanup:
		return dispatch(cmd.Type, handlers.Cleanup, cmd.Cleanup)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func dispatch[A any](typ Type, handler func(A) (Result, error), args *A) (Result, error) {
	if handler == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s arguments missing", typ)}
	}
	return handler(*args)
}
