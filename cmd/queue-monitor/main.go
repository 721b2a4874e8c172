package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"salon-chat-client/internal/config"
	"salon-chat-client/internal/rest"
)

// queue-monitor is the support team's terminal console: it watches the live
// chat queue and claims, releases, and closes sessions through the admin API.
func main() {
	configPath := flag.String("config", "config.yml", "path to the widget config file")
	phone := flag.String("phone", "", "admin phone number (falls back to ADMIN_PHONE)")
	password := flag.String("password", "", "admin password (falls back to ADMIN_PASSWORD)")
	flag.Parse()

	cnf, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	if level, err := logrus.ParseLevel(cnf.Log.Level); err == nil {
		log.SetLevel(level)
	}

	client, err := rest.NewClient(cnf.API.BaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("api client init failed")
	}

	ctx := context.Background()

	creds := rest.Credentials{
		PhoneNumber: orEnv(*phone, "ADMIN_PHONE"),
		Password:    orEnv(*password, "ADMIN_PASSWORD"),
	}
	if creds.PhoneNumber == "" || creds.Password == "" {
		log.Fatal("admin credentials required (flags or ADMIN_PHONE/ADMIN_PASSWORD)")
	}

	if err := client.BootstrapCSRF(ctx); err != nil {
		log.WithError(err).Fatal("csrf bootstrap failed")
	}
	user, err := client.Login(ctx, creds)
	if err != nil {
		log.WithError(err).Fatal("login failed")
	}
	log.WithField("user_type", user.UserType).Info("logged in")

	printQueue(ctx, client)

	fmt.Println("commands: list | active | claim <key> | release <key> | close <key> | history <key> | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd := fields[0]
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch cmd {
		case "quit":
			if err := client.Logout(ctx); err != nil {
				log.WithError(err).Warn("logout failed")
			}
			return
		case "list":
			printQueue(ctx, client)
		case "active":
			printActive(ctx, client)
		case "claim":
			if arg == "" {
				fmt.Println("usage: claim <session_key>")
				continue
			}
			result, err := client.ClaimChat(ctx, arg)
			if err != nil {
				fmt.Println("claim failed:", err)
				continue
			}
			fmt.Println(result.Message)
		case "release":
			if arg == "" {
				fmt.Println("usage: release <session_key>")
				continue
			}
			if err := client.ReleaseChat(ctx, arg, false); err != nil {
				fmt.Println("release failed:", err)
			}
		case "close":
			if arg == "" {
				fmt.Println("usage: close <session_key>")
				continue
			}
			if err := client.CloseChat(ctx, arg); err != nil {
				fmt.Println("close failed:", err)
			}
		case "history":
			if arg == "" {
				fmt.Println("usage: history <session_key>")
				continue
			}
			printHistory(ctx, client, arg)
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func orEnv(val, key string) string {
	if val != "" {
		return val
	}
	return os.Getenv(key)
}

func printQueue(ctx context.Context, client *rest.Client) {
	entries, err := client.DetailedQueue(ctx)
	if err != nil {
		fmt.Println("queue fetch failed:", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("queue is empty")
		return
	}

	for _, entry := range entries {
		waiting := time.Duration(entry.WaitingTime * float64(time.Second)).Round(time.Second)
		locked := ""
		if entry.IsLocked && entry.LockedBy != nil {
			locked = " locked-by=" + *entry.LockedBy
		}
		fmt.Printf("#%d %s user=%s waiting=%s%s\n",
			entry.Position, entry.SessionKey, entry.UserName, waiting, locked)
		if entry.LastMessage != nil {
			fmt.Printf("    last: %s\n", *entry.LastMessage)
		}
	}
}

func printActive(ctx context.Context, client *rest.Client) {
	sessions, err := client.ActiveChats(ctx)
	if err != nil {
		fmt.Println("active chats fetch failed:", err)
		return
	}
	for _, s := range sessions {
		fmt.Printf("%s status=%s last_activity=%s\n", s.SessionKey, s.Status, s.LastActivity)
	}
}

func printHistory(ctx context.Context, client *rest.Client, sessionKey string) {
	history, err := client.ChatHistory(ctx, sessionKey)
	if err != nil {
		fmt.Println("history fetch failed:", err)
		return
	}
	for _, msg := range history.Messages {
		name := msg.SenderName
		if name == "" {
			name = msg.SenderType
		}
		fmt.Printf("[%s] %s\n", name, msg.Content)
	}
}
