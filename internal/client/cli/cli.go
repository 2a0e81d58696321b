package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/iudanet/studyroom/internal/client/api"
	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/session"
	"github.com/iudanet/studyroom/internal/validation"
)

// ErrUsage неверные аргументы команды
var ErrUsage = errors.New("invalid usage")

// Config глобальные настройки клиента
type Config struct {
	CacheDir    string // каталог для скачанных PDF; пусто - не скачивать
	HistorySize int    // размер журнала чата; 0 - без ограничения
	DedupeEcho  bool
	QuietRejoin bool
}

type Cli struct {
	apiClient *api.Client
	bootstrap *session.Bootstrap
	io        iocli.IO
	logger    *slog.Logger
	cfg       Config
}

func New(logger *slog.Logger, apiClient *api.Client, bootstrap *session.Bootstrap, io iocli.IO, cfg Config) *Cli {
	return &Cli{
		apiClient: apiClient,
		bootstrap: bootstrap,
		io:        io,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create":
		return c.runCreate(ctx, args)
	case "join":
		return c.runJoin(ctx, args)
	case "room":
		return c.runRoom(ctx, args)
	case "upload":
		return c.runUpload(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "leave":
		return c.runLeave(ctx)
	case "help":
		PrintUsage(c.io)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

// resolveName берет имя из флага или из сессии (с запросом при необходимости)
func (c *Cli) resolveName(ctx context.Context, flagName string) (string, error) {
	if flagName != "" {
		return validation.ValidateDisplayName(flagName)
	}
	return c.bootstrap.Resolve(ctx)
}

// parseInterspersed разбирает флаги, стоящие и до, и после позиционных аргументов
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// describeError превращает ошибку в сообщение для пользователя
func describeError(err error, networkMessage string) string {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	if msg, ok := api.RejectionMessage(err); ok && msg != "" {
		return msg
	}
	if api.IsNetworkError(err) {
		return networkMessage
	}
	return err.Error()
}

func PrintUsage(io iocli.IO) {
	io.Println("StudyRoom Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  studyroom [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version          Show version information")
	io.Println("  --server URL       Server URL (default: http://localhost:5000, env STUDYROOM_SERVER)")
	io.Println("  --db PATH          Path to local session database (default: studyroom-client.db)")
	io.Println("  --name NAME        Display name (env STUDYROOM_NAME)")
	io.Println("  --history N        Chat history size, 0 for unlimited (default: 500)")
	io.Println("  --cache-dir DIR    Download shared PDFs into DIR")
	io.Println("  --dedupe-echo      Hide the server echo of your own messages")
	io.Println("  --quiet-rejoin     Do not repeat the welcome line after reconnecting")
	io.Println("  --verbose          Debug logging to stderr")
	io.Println()
	io.Println("Commands:")
	io.Println("  create [--name NAME]         Create a new study room")
	io.Println("  join CODE [--name NAME]      Check a room code and remember your name")
	io.Println("  room CODE                    Enter the room (chat, PDF, highlights)")
	io.Println("  upload CODE PATH             Upload a PDF into the room")
	io.Println("  status                       Show the stored session")
	io.Println("  leave                        Forget the stored session")
	io.Println()
	io.Println("Examples:")
	io.Println("  studyroom create --name Alice")
	io.Println("  studyroom join 3F2A9C1B")
	io.Println("  studyroom --cache-dir ~/Downloads room 3F2A9C1B")
	io.Println("  studyroom upload 3F2A9C1B lecture.pdf")
}
