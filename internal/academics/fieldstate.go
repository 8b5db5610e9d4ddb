package academics

// FieldState — трёхзначное состояние входного поля: не передано вовсе
// (берём дефолт), явно очищено, либо явное значение. Явная замена
// паре undefined/null, на которой такие правила обычно и ломаются.
type FieldState[T any] struct {
	set   bool
	clear bool
	val   T
}

func Unset[T any]() FieldState[T] { return FieldState[T]{} }

func Clear[T any]() FieldState[T] { return FieldState[T]{set: true, clear: true} }

func Value[T any](v T) FieldState[T] { return FieldState[T]{set: true, val: v} }

// IsSet — поле передано в этом вызове (значение или явная очистка).
func (f FieldState[T]) IsSet() bool { return f.set }

// IsClear — поле явно очищено.
func (f FieldState[T]) IsClear() bool { return f.set && f.clear }

// Get — значение; ok=false для Unset и Clear.
func (f FieldState[T]) Get() (T, bool) {
	if !f.set || f.clear {
		var zero T
		return zero, false
	}
	return f.val, true
}

// Ptr — значение указателем, nil для Unset/Clear.
func (f FieldState[T]) Ptr() *T {
	if v, ok := f.Get(); ok {
		return &v
	}
	return nil
}
