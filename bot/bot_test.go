package bot

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"mian-bot/config"
	statusgrpc "mian-bot/grpc"
	"mian-bot/models"

	"github.com/bwmarrin/discordgo"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestLifecycleShutdown(t *testing.T) {
	spawned := 0
	l := NewLifecycle(func() error {
		spawned++
		return nil
	})

	if l.Reason() != models.ActionNone {
		t.Errorf("Expected no reason before termination, got %v", l.Reason())
	}

	l.Shutdown()
	select {
	case <-l.Done():
	default:
		t.Fatal("Expected Done to be closed")
	}

	l.Restart()
	if spawned != 0 {
		t.Error("Restart after shutdown must not spawn a process")
	}
	if l.Reason() != models.ActionShutdown {
		t.Errorf("Expected shutdown to win, got %v", l.Reason())
	}
}

func TestLifecycleRestart(t *testing.T) {
	var l *Lifecycle
	l = NewLifecycle(func() error {
		select {
		case <-l.Done():
			t.Error("Termination was signalled before the replacement was spawned")
		default:
		}
		return nil
	})

	l.Restart()
	<-l.Done()
	if l.Reason() != models.ActionRestart {
		t.Errorf("Expected restart, got %v", l.Reason())
	}
}

func TestLifecycleRestartSpawnFailure(t *testing.T) {
	l := NewLifecycle(func() error { return errors.New("exec format error") })

	l.Restart()
	select {
	case <-l.Done():
	default:
		t.Fatal("Failed spawn must still terminate")
	}
}

func TestLifecycleConcurrentRequests(t *testing.T) {
	l := NewLifecycle(func() error { return nil })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				l.Shutdown()
			} else {
				l.Restart()
			}
		}(i)
	}
	wg.Wait()

	if r := l.Reason(); r != models.ActionShutdown && r != models.ActionRestart {
		t.Errorf("Unexpected reason %v", r)
	}
}

func TestGuildTracker(t *testing.T) {
	g := NewGuildTracker()

	if !g.MarkAvailable("a") {
		t.Error("First availability must need a pass")
	}
	if g.MarkAvailable("a") {
		t.Error("Second availability must not need a pass")
	}

	g.Reset([]string{"b"})
	if !g.MarkAvailable("a") {
		t.Error("Reset must forget previous guilds")
	}
	if g.MarkAvailable("b") {
		t.Error("Guilds passed to Reset are already synchronized")
	}

	g.Forget("b")
	if !g.MarkAvailable("b") {
		t.Error("Forgotten guild must need a pass")
	}
}

type mockServing struct {
	calls []bool
}

func (m *mockServing) SetServing(serving bool) { m.calls = append(m.calls, serving) }

func TestReportStatus(t *testing.T) {
	s := &mockServing{}
	reportStatus(true, 40*time.Millisecond, s)
	reportStatus(false, 0, s)
	reportStatus(true, 0, nil)

	if len(s.calls) != 2 || !s.calls[0] || s.calls[1] {
		t.Errorf("Unexpected serving updates: %v", s.calls)
	}
}

func TestNewBot(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := NewBot(&config.Config{})
		if !errors.Is(err, config.ErrMissingToken) {
			t.Errorf("Expected ErrMissingToken, got %v", err)
		}
	})

	t.Run("invalid author id disables privileged commands", func(t *testing.T) {
		b, err := NewBot(&config.Config{Token: "token", AuthorID: "not-a-number"})
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if b.Auth.Configured() {
			t.Error("Expected auth to be unconfigured")
		}
		if b.Session.Identify.Intents&discordgo.IntentsGuilds == 0 {
			t.Error("Expected guild intent")
		}
		if b.servingSetter() != nil {
			t.Error("Expected no status server before Start")
		}
	})

	t.Run("author id", func(t *testing.T) {
		b, err := NewBot(&config.Config{Token: "token", AuthorID: "123"})
		if err != nil {
			t.Fatalf("Unexpected error: %+v", err)
		}
		if !b.Auth.IsAuthor(123) {
			t.Error("Expected author to be authorized")
		}
	})
}

func TestSessionCommandService(t *testing.T) {
	s, err := discordgo.New("Bot token")
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if err := s.State.GuildAdd(&discordgo.Guild{ID: "g1"}); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	svc := sessionCommandService{session: s}

	if !svc.HasGuild("g1") {
		t.Error("Expected g1 to be known")
	}
	if svc.HasGuild("g2") {
		t.Error("Expected g2 to be unknown")
	}

	if _, err := svc.BulkOverwrite("g1", nil); !errors.Is(err, errNoApplication) {
		t.Errorf("Expected errNoApplication before Ready, got %v", err)
	}
}

func TestGatewayIntents(t *testing.T) {
	slashOnly := gatewayIntents(&config.Config{Token: "token"})
	if slashOnly != discordgo.IntentsGuilds {
		t.Errorf("Expected only the guilds intent, got %d", slashOnly)
	}

	withText := gatewayIntents(&config.Config{Token: "token", TextCommands: true})
	for _, intent := range []discordgo.Intent{discordgo.IntentsGuilds, discordgo.IntentsGuildMessages, discordgo.IntentsDirectMessages, discordgo.IntentsMessageContent} {
		if withText&intent == 0 {
			t.Errorf("Expected intent %d with text commands enabled", intent)
		}
	}

	b, err := NewBot(&config.Config{Token: "token"})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	if b.Session.Identify.Intents&discordgo.IntentsMessageContent != 0 {
		t.Error("Message content must not be requested without text commands")
	}
}

// waitReturns runs b.wait and reports whether it returned within timeout.
func waitReturns(b *Bot, sc <-chan os.Signal, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.wait(sc)
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWaitReturnsAfterShutdownWithHealthWatcher(t *testing.T) {
	b, err := NewBot(&config.Config{Token: "token"})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	b.status = statusgrpc.NewStatusServer("127.0.0.1:0")
	if err := b.status.Start(); err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	conn, err := grpc.NewClient(b.status.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}
	defer conn.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := healthpb.NewHealthClient(conn).Watch(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Watch failed: %+v", err)
	}
	if _, err := stream.Recv(); err != nil {
		t.Fatalf("Expected initial status, got %+v", err)
	}

	b.Lifecycle.Shutdown()
	if !waitReturns(b, make(chan os.Signal), 10*time.Second) {
		t.Fatal("Bot did not stop after shutdown was requested")
	}
}

func TestWaitReturnsOnSignal(t *testing.T) {
	b, err := NewBot(&config.Config{Token: "token"})
	if err != nil {
		t.Fatalf("Unexpected error: %+v", err)
	}

	sc := make(chan os.Signal, 1)
	sc <- syscall.SIGTERM
	if !waitReturns(b, sc, 5*time.Second) {
		t.Fatal("Bot did not stop after a signal")
	}
	if b.Lifecycle.Reason() != models.ActionNone {
		t.Errorf("Signal must not record a termination reason, got %v", b.Lifecycle.Reason())
	}
}
