package apperr

// Failure is the serialized error half of a Result.
type Failure struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Result is the tagged outcome handed to the UI shell.
type Result[T any] struct {
	OK    bool     `json:"ok"`
	Value T        `json:"value,omitempty"`
	Error *Failure `json:"error,omitempty"`
}

func Ok[T any](value T) Result[T] {
	return Result[T]{OK: true, Value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{
		Error: &Failure{Kind: KindOf(err), Message: MessageOf(err)},
	}
}

// From folds a (value, error) pair into a Result.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// Status is the HTTP status matching the result.
func (r Result[T]) Status(okStatus int) int {
	if r.OK {
		return okStatus
	}
	return HTTPStatus(r.Error.Kind)
}
