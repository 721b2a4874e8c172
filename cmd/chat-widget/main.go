package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"salon-chat-client/internal/channel"
	"salon-chat-client/internal/chat"
	"salon-chat-client/internal/config"
	"salon-chat-client/internal/faq"
	"salon-chat-client/internal/ops"
	"salon-chat-client/internal/queue"
	"salon-chat-client/internal/rest"
	"salon-chat-client/internal/session"
	"salon-chat-client/internal/widget"
)

type app struct {
	log       *logrus.Logger
	rest      *rest.Client
	cache     *faq.Cache
	runner    *queue.SideEffectRunner
	sessionID string

	mu         sync.Mutex
	cnf        config.Conf
	manager    *channel.Manager
	controller *widget.Controller
}

func main() {
	configPath := flag.String("config", "config.yml", "path to the widget config file")
	flag.Parse()

	cnf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cnf.Log)

	restClient, err := rest.NewClient(cnf.API.BaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("api client init failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache, err := faq.NewCache(ctx, restClient, cnf.Chat.FAQCacheTTL, log)
	if err != nil {
		log.WithError(err).Fatal("faq cache init failed")
	}
	defer cache.Close()

	runner := queue.NewSideEffectRunner(32, 4, log)
	defer runner.Shutdown()

	provider := session.NewProvider(newSessionStore(cnf.Session), log)

	a := &app{
		log:       log,
		rest:      restClient,
		cache:     cache,
		runner:    runner,
		sessionID: provider.GetOrCreateSessionID(),
		cnf:       cnf,
	}

	if err := config.Watch(ctx, *configPath, log, func(next config.Conf) {
		a.mu.Lock()
		a.cnf = next
		a.mu.Unlock()
	}); err != nil {
		log.WithError(err).Debug("config watch unavailable")
	}

	opsServer := ops.NewServer(cnf.Ops.ListenAddr, a.isConnected, runner.Depth, log)
	go opsServer.Run()

	a.mount(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		a.unmount()
		cancel()
		os.Exit(0)
	}()

	a.inputLoop(ctx)
	a.unmount()
}

func newLogger(cnf config.Log) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cnf.Level); err == nil {
		log.SetLevel(level)
	}
	if cnf.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func newSessionStore(cnf config.Session) session.Store {
	if cnf.Store == "redis" {
		return session.NewRedisStore(cnf.RedisAddr, cnf.RedisPass)
	}
	path := cnf.FilePath
	if path == "" {
		path = session.DefaultFilePath()
	}
	return session.NewFileStore(path)
}

// mount builds a fresh machine, channel, and controller, then dials. Called
// on startup and again by the reconnect cycle, which deliberately discards
// all in-memory chat state and resumes via the stable session identifier.
func (a *app) mount(ctx context.Context) {
	a.mu.Lock()
	cnf := a.cnf
	a.mu.Unlock()

	machine := chat.NewMachine()

	manager := channel.NewManager(
		channel.Config{
			WSBaseURL:      cnf.Chat.WSBaseURL,
			ReconnectDelay: cnf.Chat.ReconnectDelay,
		},
		a.log,
		func(frame chat.Frame) {
			machine.Apply(frame)
			printFrame(frame)
		},
		func() { a.remount(ctx) },
	)

	controller := widget.NewController(widget.Options{
		Machine: machine,
		Sender:  manager,
		Source:  a.cache,
		Touch:   a.rest.TouchFAQ,
		Enqueue: func(fn func() error) {
			a.runner.Enqueue(queue.Job{Fn: fn})
		},
		Log: a.log,
	})

	a.mu.Lock()
	a.manager = manager
	a.controller = controller
	a.mu.Unlock()

	controller.LoadFAQs(ctx)

	if err := manager.Connect(ctx, a.sessionID); err != nil {
		fmt.Println("در حال اتصال...")
	}

	a.render()
}

func (a *app) remount(ctx context.Context) {
	a.log.Info("chat channel lost, reloading widget state")

	a.mu.Lock()
	controller := a.controller
	a.mu.Unlock()
	if controller != nil {
		controller.Close()
	}

	a.mount(ctx)
}

func (a *app) unmount() {
	a.mu.Lock()
	manager := a.manager
	controller := a.controller
	a.mu.Unlock()

	if controller != nil {
		controller.Close()
	}
	if manager != nil {
		manager.Close()
	}
}

func (a *app) current() (*widget.Controller, *channel.Manager) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controller, a.manager
}

func (a *app) isConnected() bool {
	a.mu.Lock()
	manager := a.manager
	a.mu.Unlock()
	return manager != nil && manager.IsConnected()
}

func (a *app) inputLoop(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		controller, _ := a.current()

		switch {
		case line == "/quit":
			return
		case line == "/back":
			controller.Back()
		case line == "/support":
			controller.Escalate()
		case line == "/retry":
			controller.LoadFAQs(ctx)
		case line == "":
		default:
			if controller.Mode() == widget.ModeFAQList {
				if id, err := strconv.Atoi(line); err == nil {
					if !controller.SelectFAQ(id) {
						fmt.Println("سوالی با این شماره وجود ندارد")
					}
					break
				}
			}
			controller.SendMessage(line)
		}

		a.render()
	}
}

func (a *app) render() {
	controller, manager := a.current()
	if controller == nil {
		return
	}

	switch controller.Mode() {
	case widget.ModeFAQList:
		fmt.Println("--- سوالات متداول ---")
		if errText := controller.LoadError(); errText != "" {
			fmt.Println(errText, "(/retry برای تلاش دوباره)")
		}
		for _, entry := range controller.FAQs() {
			fmt.Printf("[%d] %s\n", entry.ID, entry.Question)
		}
		fmt.Println("شماره سوال را وارد کنید یا /support برای گفتگو با پشتیبان")

	case widget.ModeFAQAnswer:
		if entry, ok := controller.Selected(); ok {
			fmt.Println("سوال:", entry.Question)
			fmt.Println("پاسخ:", entry.Answer)
		}
		fmt.Println("(/back بازگشت، /support همچنان نیاز به کمک دارم)")

	case widget.ModeChat:
		if manager != nil && !manager.IsConnected() {
			fmt.Println("در حال اتصال...")
		}
		fmt.Printf("وضعیت: %s", controller.Status())
		if pos, ok := controller.QueuePosition(); ok && controller.Status() == chat.StatusQueued {
			fmt.Printf(" (جایگاه در صف: %d)", pos)
		}
		fmt.Println()
		if !controller.CanSend() {
			fmt.Println("ارسال پیام غیرفعال است")
		}
	}
}

func printFrame(frame chat.Frame) {
	sender := frame.Sender
	if sender == "" {
		sender = frame.Type
	}
	fmt.Printf("[%s] %s\n", sender, frame.Message)
}
