package models

import "errors"

// Kind определяет категорию ошибки, которую граница HTTP переводит в код ответа
type Kind int

const (
	KindUnknown        Kind = iota // Неклассифицированная ошибка
	KindNotFound                   // Ресурс отсутствует (пустая очередь, нет вызванного номера, нет файла меню)
	KindMalformedInput             // Данные не разбираются (испорченный файл меню)
	KindPersistence                // Ошибка записи или чтения хранилища
)

// String возвращает название категории для логов
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindMalformedInput:
		return "malformed-input"
	case KindPersistence:
		return "persistence-failure"
	default:
		return "unknown"
	}
}

// Error ошибка приложения с явной категорией
type Error struct {
	Kind Kind   // Категория ошибки
	Msg  string // Сообщение для клиента, если пустое - используется текст Err
	Err  error  // Исходная ошибка
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound создает ошибку "не найдено" с сообщением для клиента
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// MalformedInput оборачивает ошибку разбора данных
func MalformedInput(err error) error {
	return &Error{Kind: KindMalformedInput, Err: err}
}

// Persistence оборачивает ошибку хранилища, сохраняя ее текст
func Persistence(err error) error {
	return &Error{Kind: KindPersistence, Err: err}
}

// KindOf возвращает категорию ошибки или KindUnknown
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsNotFound сообщает, относится ли ошибка к категории "не найдено"
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
