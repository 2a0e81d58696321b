package iocli

//go:generate moq -out io_mock.go . IO

// IO ввод/вывод терминального клиента.
// Реализации должны допускать вывод из нескольких горутин.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	// ReadInput печатает приглашение и читает одну строку без пробелов по краям.
	// В конце ввода возвращает io.EOF.
	ReadInput(prompt string) (string, error)
	// IsInteractive сообщает, подключен ли ввод к терминалу
	IsInteractive() bool
}
