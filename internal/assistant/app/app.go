// Package app wires the assistant together: the Alta API client, the Matrix
// chat surface, the intent resolver, the executor, and the SQLite audit
// trail.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/3madMostafa/Alta-Video-Assistant/common/redact"
	"github.com/3madMostafa/Alta-Video-Assistant/common/trace"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/alta"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/config"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/executor"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/format"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/intent"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/matrix"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/session"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/store"
)

// typingTimeout bounds the typing indicator shown while a turn executes.
const typingTimeout = 30 * time.Second

// App is the assembled assistant.
type App struct {
	config       *config.Config
	store        *store.Store
	matrix       *matrix.Client
	gateway      *alta.Client
	executor     *executor.Executor
	sessions     *session.Store
	healthServer *HealthServer
}

// New builds the assistant from its configuration.
func New(cfg *config.Config) (*App, error) {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	matrixClient, err := matrix.New(&matrix.Config{
		Homeserver:  cfg.Matrix.Homeserver,
		UserID:      cfg.Matrix.UserID,
		AccessToken: cfg.Matrix.AccessToken,
		Rooms:       cfg.Matrix.Rooms,
		DB:          db.DB(),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create Matrix client: %w", err)
	}

	gateway := alta.New(alta.Config{
		BaseURL:     cfg.Alta.BaseURL,
		APIToken:    cfg.Alta.APIToken,
		Timeout:     time.Duration(cfg.Alta.Timeout),
		MaxAttempts: cfg.Alta.MaxAttempts,
	})

	sessions := session.NewStore()

	a := &App{
		config:   cfg,
		store:    db,
		matrix:   matrixClient,
		gateway:  gateway,
		executor: executor.New(gateway),
		sessions: sessions,
	}
	if cfg.HTTP.Addr != "" {
		a.healthServer = NewHealthServer(cfg.HTTP.Addr, db, sessions)
	}
	return a, nil
}

// Run starts the assistant and blocks until an interrupt signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.healthServer != nil {
		if err := a.healthServer.Start(ctx); err != nil {
			slog.Warn("health server failed to start; continuing without it", "err", err)
		}
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("start Matrix client: %w", err)
	}

	a.sendGreetings(ctx)

	slog.Info("assistant is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop releases the assistant's resources.
func (a *App) Stop() {
	slog.Info("stopping Matrix client")
	a.matrix.Stop()

	if a.healthServer != nil {
		slog.Info("stopping health server")
		a.healthServer.Stop()
	}

	slog.Info("closing database")
	a.store.Close()
}

// sendGreetings posts the startup notice to every configured room. The
// account name comes from /me; a failed lookup degrades to the nameless
// greeting rather than blocking startup.
func (a *App) sendGreetings(ctx context.Context) {
	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	name := ""
	if user, err := a.gateway.CurrentUser(lookupCtx); err == nil {
		name = user.Name()
	} else {
		slog.Warn("startup account lookup failed", "err", err)
	}

	greeting := format.Greeting(name)
	for _, roomID := range a.config.Matrix.Rooms {
		if err := a.matrix.SendNotice(roomID, greeting); err != nil {
			slog.Warn("failed to send greeting", "room", roomID, "err", err)
		}
	}
}

// handleMessage processes one user turn: resolve, execute, format, audit.
// A failing turn answers with a formatted error; it never crashes the sync
// loop.
func (a *App) handleMessage(ctx context.Context, evt *event.Event) {
	msgContent := evt.Content.AsMessage()
	if msgContent == nil {
		return
	}
	sender := evt.Sender.String()
	roomID := evt.RoomID.String()

	if !a.config.IsAllowedSender(sender) {
		// Silently ignore messages from users not on the allowlist.
		return
	}

	traceID := trace.GenerateID()
	ctx = trace.WithTraceID(ctx, traceID)
	text := msgContent.Body

	s := a.sessions.Get(roomID, sender)
	resolved := intent.Resolve(text, intent.Context{
		AwaitingConfirmation: s.AwaitingConfirmation,
		DoorOptionCount:      len(s.PendingDoorOptions),
	})
	s.Track(resolved.Kind)

	slog.Info("resolved intent",
		"trace_id", traceID, "session", s.ID, "room", roomID, "sender", sender, "intent", resolved.Kind)

	if err := a.matrix.SetTyping(roomID, true, typingTimeout); err != nil {
		slog.Debug("set typing failed", "err", err)
	}
	defer func() {
		if err := a.matrix.SetTyping(roomID, false, 0); err != nil {
			slog.Debug("clear typing failed", "err", err)
		}
	}()

	res, execErr := a.executor.Execute(ctx, resolved, s)

	var reply string
	if execErr != nil {
		// Upstream error text can embed request details; keep tokens out of
		// the room.
		execErr.Message = a.redactSecrets(execErr.Message)
		reply = format.Error(execErr)
	} else {
		reply = format.Render(res)
		if resolved.Prompt != "" {
			reply = resolved.Prompt + "\n\n" + reply
		}
		if followUps := format.FollowUps(resolved.FollowUps); followUps != "" {
			reply = reply + "\n\n" + followUps
		}
	}

	a.writeAudit(ctx, traceID, sender, roomID, s.ID, resolved, res, execErr)

	htmlBody := markdownToHTML(reply)
	if err := a.matrix.SendFormattedMessage(roomID, htmlBody, reply); err != nil {
		slog.Error("failed to send reply", "trace_id", traceID, "room", roomID, "err", err)
	}
}

// writeAudit records the turn. Audit failures are logged, never surfaced to
// the user.
func (a *App) writeAudit(ctx context.Context, traceID, sender, roomID, sessionID string, resolved intent.Intent, res *executor.Result, execErr *executor.Error) {
	target := auditTarget(resolved, res)
	result := "ok"
	errorMsg := ""
	if execErr != nil {
		result = "error"
		errorMsg = a.redactSecrets(execErr.Message)
	}

	payload := store.AuditPayload{"session_id": sessionID}
	if res != nil && res.Door != "" {
		payload["door"] = res.Door
	}

	if err := a.store.WriteAudit(ctx, traceID, sender, roomID, string(resolved.Kind), target, result, payload, errorMsg); err != nil {
		slog.Warn("audit write failed", "trace_id", traceID, "err", err)
	}
}

// redactSecrets strips the configured tokens from text that is stored or
// sent to a room.
func (a *App) redactSecrets(s string) string {
	return redact.String(s, a.config.Alta.APIToken, a.config.Matrix.AccessToken)
}

// auditTarget names the acted-on resource for intents that have one.
func auditTarget(resolved intent.Intent, res *executor.Result) string {
	switch {
	case resolved.Params.AccessPointID != "":
		return resolved.Params.AccessPointID
	case resolved.Params.GUID != "":
		return resolved.Params.GUID
	case resolved.Params.DoorQuery != "":
		return resolved.Params.DoorQuery
	case res != nil && res.Door != "":
		return res.Door
	default:
		return ""
	}
}
