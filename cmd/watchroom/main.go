package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/watchroom/client-go/internal/config"
	"github.com/watchroom/client-go/internal/credentials"
	"github.com/watchroom/client-go/internal/gateway"
	"github.com/watchroom/client-go/internal/store"
	"github.com/watchroom/client-go/internal/types"
)

const usage = `usage: watchroom <command> [flags]

commands:
  login     sign in and persist the session token
  register  create an account
  logout    clear the persisted session
  whoami    show the current session
  rooms     list rooms or create one (list|create)
  users     list selectable users
`

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[watchroom] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config: ", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	creds := credentials.NewFileStore(cfg.CredentialsFile)
	gw, err := gateway.NewClient(cfg.ServerURL, creds, logger, gateway.Options{
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	if err != nil {
		logger.Fatal("gateway: ", err)
	}

	st := store.New(logger, gw, creds, store.Options{
		TokenTTL:          cfg.TokenTTL,
		ValidateVideoURLs: cfg.ValidateVideoURLs,
		EnforceTimeOrder:  cfg.EnforceTimeOrder,
	})

	if err := st.Session.Restore(); err != nil {
		logger.Printf("restore session: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := run(ctx, st, os.Args[1], os.Args[2:]); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, st *store.Store, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, st, args)
	case "register":
		return runRegister(ctx, st, args)
	case "logout":
		return st.Session.Logout()
	case "whoami":
		return runWhoami(st)
	case "rooms":
		return runRooms(ctx, st, args)
	case "users":
		return runUsers(ctx, st)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	route, err := st.Session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("signed in, continue at %s\n", route)
	return nil
}

func runRegister(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	firstName := fs.String("first-name", "", "first name (extended form)")
	lastName := fs.String("last-name", "", "last name (extended form)")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	route, err := st.Session.Register(ctx, store.RegisterParams{
		Username:  *username,
		FirstName: *firstName,
		LastName:  *lastName,
		Email:     *email,
		Password:  *password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("account created, continue at %s\n", route)
	return nil
}

func runWhoami(st *store.Store) error {
	state := st.Session.State()
	if !state.IsAuthenticated {
		fmt.Println("not signed in")
		return nil
	}

	fmt.Printf("%s (%s)\n", state.User.Email, state.User.UserID)
	return nil
}

func runRooms(ctx context.Context, st *store.Store, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watchroom rooms <list|create> [flags]")
	}

	switch args[0] {
	case "list":
		if err := st.Rooms.Refresh(ctx); err != nil {
			return err
		}
		for _, room := range st.Rooms.List() {
			fmt.Printf("%s\t%s\towner=%s\tvideos=%d\t%s - %s\n",
				room.ID, room.Name, room.Owner, len(room.Videos), room.StartTime, room.EndTime)
		}
		return nil
	case "create":
		return runCreateRoom(ctx, st, args[1:])
	default:
		return fmt.Errorf("unknown rooms subcommand %q", args[0])
	}
}

func runCreateRoom(ctx context.Context, st *store.Store, args []string) error {
	var videos stringSliceFlag

	fs := flag.NewFlagSet("rooms create", flag.ExitOnError)
	name := fs.String("name", "", "room name")
	start := fs.String("start", "", "start time (2006-01-02T15:04)")
	end := fs.String("end", "", "end time (2006-01-02T15:04)")
	participants := fs.String("participants", "", "comma-separated participant ids")
	fs.Var(&videos, "video", "video as 'title=url', repeatable")
	fs.Parse(args)

	draft, err := st.NewDraft()
	if err != nil {
		return err
	}

	draft.Name = *name
	draft.StartTime = *start
	draft.EndTime = *end
	draft.Videos = nil
	for _, v := range videos {
		title, url, ok := strings.Cut(v, "=")
		if !ok {
			return fmt.Errorf("invalid -video %q, want 'title=url'", v)
		}
		draft.Videos = append(draft.Videos, types.Video{Title: title, URL: url})
	}
	store.SetParticipants(draft, *participants)

	room, err := st.CreateRoom(ctx, draft)
	if err != nil {
		return err
	}

	fmt.Printf("room created: %s (%s)\n", room.Name, room.ID)
	return nil
}

func runUsers(ctx context.Context, st *store.Store) error {
	if err := st.Users.Refresh(ctx); err != nil {
		return err
	}

	for _, u := range st.Users.List() {
		fmt.Printf("%s\t%s\t%s\n", u.ID, u.Username, u.Email)
	}
	return nil
}
