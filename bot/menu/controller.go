// Package menu implements the callback-driven admin settings menus and the
// prompt-and-collect flow used for values that need free-form input.
package menu

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/filestore-bot/bot/settings"
	"github.com/m3rciful/filestore-bot/core/errtrack"
	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
	"github.com/m3rciful/filestore-bot/core/telegram/callbacks"
	"github.com/m3rciful/filestore-bot/core/telegram/format"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"

	tele "gopkg.in/telebot.v4"
)

const component = "service.menu"

// ChatInfo is the part of a Telegram chat the menus look at.
type ChatInfo struct {
	ID       int64
	Type     tele.ChatType
	Title    string
	Username string
}

// Name returns the chat title, the @username, or "".
func (c ChatInfo) Name() string {
	if c.Title != "" {
		return c.Title
	}
	if c.Username != "" {
		return "@" + c.Username
	}
	return ""
}

// Surface is the menu message an action was pressed on.
type Surface interface {
	// MessageID identifies the menu message.
	MessageID() int
	// Render replaces the menu message with v.
	Render(ctx context.Context, v View) error
	// Discard deletes a message in the same chat, typically the user's reply.
	Discard(ctx context.Context, messageID int) error
	// Close deletes the menu message and the message it replied to.
	Close(ctx context.Context) error
	// ResolveChat looks a chat up by id.
	ResolveChat(ctx context.Context, id int64) (ChatInfo, error)
}

// Request is one pressed menu button.
type Request struct {
	Action  callbacks.Action
	ChatID  int64
	UserID  int64
	Surface Surface
}

func (r Request) key() prompt.Key {
	return prompt.Key{ChatID: r.ChatID, UserID: r.UserID}
}

// Options configure a Controller.
type Options struct {
	OwnerID int64
	// Timeout bounds every prompt; zero means prompt.DefaultTimeout.
	Timeout time.Duration
	Tracker errtrack.Tracker
}

type handlerFunc func(ctx context.Context, req Request) error

// promptMark remembers which message the newest prompt of a key was rendered on.
type promptMark struct {
	session string
	message int
}

// Controller maps action identifiers to menu handlers.
type Controller struct {
	store   *settings.Store
	prompts *prompt.Manager
	ownerID int64
	timeout time.Duration
	tracker errtrack.Tracker

	handlers map[string]handlerFunc

	mu    sync.Mutex
	marks map[prompt.Key]promptMark
}

// NewController wires the action table.
func NewController(store *settings.Store, prompts *prompt.Manager, opts Options) *Controller {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = prompt.DefaultTimeout
	}
	tracker := opts.Tracker
	if tracker == nil {
		tracker = errtrack.Noop{}
	}
	c := &Controller{
		store:    store,
		prompts:  prompts,
		ownerID:  opts.OwnerID,
		timeout:  timeout,
		tracker:  tracker,
		handlers: make(map[string]handlerFunc),
		marks:    make(map[prompt.Key]promptMark),
	}
	c.register()
	return c
}

// Keys returns every action identifier the controller handles, sorted.
func (c *Controller) Keys() []string {
	keys := make([]string, 0, len(c.handlers))
	for k := range c.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Authorized reports whether userID is the owner or a listed admin.
func (c *Controller) Authorized(ctx context.Context, userID int64) bool {
	if userID == 0 {
		return false
	}
	if c.ownerID != 0 && userID == c.ownerID {
		return true
	}
	admins, err := c.store.List(ctx, settings.Admins)
	if err != nil {
		logger.Error(ctx, component, "menu.authorize",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	return slices.Contains(admins, userID)
}

// Handle runs the handler registered for req.Action. Unknown actions are
// ignored. Failures are logged, reported and rendered as a failure view, so
// the returned error is always nil for a known action.
func (c *Controller) Handle(ctx context.Context, req Request) error {
	start := time.Now()
	key := normalize(req.Action).Key()
	h, ok := c.handlers[key]
	if !ok {
		logger.Debug(ctx, component, "menu.action",
			slog.String("action", key),
			slog.String("status", "skip"),
		)
		metrics.MenuActions.WithLabelValues("unknown", "skip").Inc()
		return nil
	}

	err := h(ctx, req)
	status := "ok"
	if err != nil {
		status = "fail"
		c.fail(ctx, req, key, err)
	}
	metrics.MenuActions.WithLabelValues(key, status).Inc()
	logger.Info(ctx, component, "menu.action",
		slog.String("action", key),
		slog.String("status", status),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// Cancel resolves the prompt waiting for key. It reports false when nothing was waiting.
func (c *Controller) Cancel(key prompt.Key) bool {
	return c.prompts.Cancel(key)
}

func (c *Controller) fail(ctx context.Context, req Request, key string, err error) {
	logger.Error(ctx, component, "menu.action.fail",
		slog.String("action", key),
		slog.String("err", err.Error()),
	)
	c.tracker.CaptureError(ctx, err, map[string]string{"action": key})
	if req.Surface == nil {
		return
	}
	if rerr := req.Surface.Render(ctx, FailureView(parentOf(req.Action))); rerr != nil {
		logger.Warn(ctx, component, "menu.render",
			slog.String("action", key),
			slog.String("status", "fail"),
			slog.String("err", rerr.Error()),
		)
	}
}

func normalize(a callbacks.Action) callbacks.Action {
	if a.Verb == "change" {
		a.Verb = "toggle"
	}
	return a
}

type flagMenu struct {
	name  settings.Name
	title string
}

var flagMenus = map[string]flagMenu{
	"generate":       {name: settings.GenerateStatus, title: "Generate Status"},
	"protect":        {name: settings.ProtectContent, title: "Protect Content"},
	"sponsor":        {name: settings.SponsorEnabled, title: "Sponsor"},
	"custom_caption": {name: settings.CustomCaptionEnabled, title: "Custom Caption"},
}

type listMenu struct {
	name    settings.Name
	title   string
	parent  string
	allowed []tele.ChatType
}

var listMenus = map[string]listMenu{
	"admin": {
		name:    settings.Admins,
		title:   "List Admins",
		parent:  "menu admins",
		allowed: []tele.ChatType{tele.ChatPrivate},
	},
	"fsub": {
		name:    settings.FsubChats,
		title:   "List F-Subs",
		parent:  "menu fsubs",
		allowed: []tele.ChatType{tele.ChatSuperGroup, tele.ChatChannel, tele.ChatChannelPrivate},
	},
}

type textField struct {
	name   settings.Name
	kind   prompt.Kind
	label  string
	parent string
}

var textFields = map[string]textField{
	"start":          {name: settings.StartText, kind: prompt.KindText, label: "Start Text", parent: "menu start"},
	"force":          {name: settings.ForceText, kind: prompt.KindText, label: "Force Text", parent: "menu force"},
	"start_photo":    {name: settings.StartPhotoURL, kind: prompt.KindURL, label: "Start Photo", parent: "menu start"},
	"force_photo":    {name: settings.ForcePhotoURL, kind: prompt.KindURL, label: "Force Photo", parent: "menu force"},
	"sponsor_text":   {name: settings.SponsorText, kind: prompt.KindText, label: "Sponsor Text", parent: "menu sponsor"},
	"sponsor_photo":  {name: settings.SponsorPhotoURL, kind: prompt.KindURL, label: "Sponsor Photo", parent: "menu sponsor"},
	"custom_caption": {name: settings.CustomCaptionTemplate, kind: prompt.KindText, label: "Custom Caption", parent: "menu custom_caption"},
}

// parentOf returns the action identifier of the menu an action belongs to.
func parentOf(a callbacks.Action) string {
	a = normalize(a)
	switch a.Verb {
	case "add", "del":
		if l, ok := listMenus[a.Object]; ok {
			return l.parent
		}
	case "update", "delete":
		if f, ok := textFields[a.Object]; ok {
			return f.parent
		}
		if a.Object == "dbchannel" {
			return "menu dbchannel"
		}
	case "reset":
		return "menu dbchannel"
	case "toggle":
		return "menu " + a.Object
	}
	return "settings"
}

func (c *Controller) register() {
	c.handlers["settings"] = c.showMain
	c.handlers["close"] = c.close
	c.handlers["cancel"] = c.cancel

	for _, object := range []string{"generate", "protect", "admins", "fsubs", "start", "force", "sponsor", "dbchannel", "custom_caption"} {
		c.handlers["menu "+object] = c.showMenu
	}
	for object := range flagMenus {
		c.handlers["toggle "+object] = c.toggle
	}
	for object := range listMenus {
		c.handlers["add "+object] = c.addToList
		c.handlers["del "+object] = c.removeFromList
	}
	for object := range textFields {
		c.handlers["update "+object] = c.updateText
		if object != "start" && object != "force" {
			c.handlers["delete "+object] = c.deleteText
		}
	}
	c.handlers["update dbchannel"] = c.updateDBChannel
	c.handlers["reset dbchannel"] = c.resetDBChannel
}

func (c *Controller) showMain(ctx context.Context, req Request) error {
	return req.Surface.Render(ctx, MainView())
}

func (c *Controller) close(ctx context.Context, req Request) error {
	return req.Surface.Close(ctx)
}

func (c *Controller) cancel(ctx context.Context, req Request) error {
	if c.prompts.Cancel(req.key()) {
		// The waiting handler re-renders the parent menu.
		return nil
	}
	return req.Surface.Render(ctx, MainView())
}

func (c *Controller) showMenu(ctx context.Context, req Request) error {
	return c.renderParent(ctx, req, req.Action.Key())
}

// menuView builds the view of "menu <object>" from current settings.
func (c *Controller) menuView(ctx context.Context, object string) (View, error) {
	switch object {
	case "generate", "protect":
		f := flagMenus[object]
		on, err := c.store.Flag(ctx, f.name)
		if err != nil {
			return View{}, err
		}
		return FlagView(f.title, object, on, false), nil
	case "admins", "fsubs":
		item := strings.TrimSuffix(object, "s")
		l := listMenus[item]
		items, err := c.store.List(ctx, l.name)
		if err != nil {
			return View{}, err
		}
		if object == "admins" {
			items = slices.DeleteFunc(items, func(id int64) bool { return id == c.ownerID })
		}
		return ListView(l.title, item, items), nil
	case "start", "force":
		text, _, err := c.store.Text(ctx, textFields[object].name)
		if err != nil {
			return View{}, err
		}
		photo, _, err := c.store.Text(ctx, textFields[object+"_photo"].name)
		if err != nil {
			return View{}, err
		}
		title := "Start"
		if object == "force" {
			title = "Force"
		}
		return GreetingView(title, object, text, photo), nil
	case "sponsor":
		on, err := c.store.Flag(ctx, settings.SponsorEnabled)
		if err != nil {
			return View{}, err
		}
		text, _, err := c.store.Text(ctx, settings.SponsorText)
		if err != nil {
			return View{}, err
		}
		photo, _, err := c.store.Text(ctx, settings.SponsorPhotoURL)
		if err != nil {
			return View{}, err
		}
		return SponsorView(on, text, photo), nil
	case "custom_caption":
		on, err := c.store.Flag(ctx, settings.CustomCaptionEnabled)
		if err != nil {
			return View{}, err
		}
		tpl, _, err := c.store.Text(ctx, settings.CustomCaptionTemplate)
		if err != nil {
			return View{}, err
		}
		return CustomCaptionView(on, tpl), nil
	}
	return MainView(), nil
}

func (c *Controller) dbChannelView(ctx context.Context, s Surface) (View, error) {
	active, err := c.store.ActiveDatabaseChat(ctx)
	if err != nil {
		return View{}, err
	}
	_, override, err := c.store.Int(ctx, settings.DatabaseChatIDOverride)
	if err != nil {
		return View{}, err
	}
	title := ""
	if info, err := s.ResolveChat(ctx, active); err == nil {
		title = info.Name()
	}
	return DBChannelView(active, override, title), nil
}

func (c *Controller) renderParent(ctx context.Context, req Request, parent string) error {
	a, _ := callbacks.ParseAction(parent)
	var (
		v   View
		err error
	)
	switch {
	case a.Verb == "menu" && a.Object == "dbchannel":
		v, err = c.dbChannelView(ctx, req.Surface)
	case a.Verb == "menu":
		v, err = c.menuView(ctx, a.Object)
	default:
		v = MainView()
	}
	if err != nil {
		return err
	}
	return req.Surface.Render(ctx, v)
}

func (c *Controller) toggle(ctx context.Context, req Request) error {
	object := req.Action.Object
	f := flagMenus[object]
	on, err := c.store.ToggleFlag(ctx, f.name)
	if err != nil {
		return err
	}
	logger.Info(ctx, component, "menu.toggle",
		slog.String("setting", string(f.name)),
		slog.Bool("value", on),
	)
	if object == "generate" || object == "protect" {
		return req.Surface.Render(ctx, FlagView(f.title, object, on, true))
	}
	return c.renderParent(ctx, req, "menu "+object)
}

func (c *Controller) addToList(ctx context.Context, req Request) error {
	l := listMenus[req.Action.Object]
	return c.collect(ctx, req, collectStep{
		kind:   prompt.KindNumeric,
		ask:    fmt.Sprintf("Send the id to add to <b>%s</b>.", l.title),
		parent: l.parent,
		apply: func(ctx context.Context, v prompt.Value) (string, error) {
			found, err := c.store.Contains(ctx, l.name, v.ID)
			if err != nil {
				return "", err
			}
			if found {
				return "", settings.ErrDuplicateEntry
			}
			info, err := req.Surface.ResolveChat(ctx, v.ID)
			if err != nil {
				logger.Warn(ctx, component, "menu.resolve_chat",
					slog.Int64("chat_id", v.ID),
					slog.String("err", err.Error()),
				)
				return "", ErrChatUnavailable
			}
			if !slices.Contains(l.allowed, info.Type) {
				return "", ErrChatKindMismatch
			}
			if err := c.store.AddToList(ctx, l.name, v.ID); err != nil {
				return "", err
			}
			return listResult(ctx, c.store, l, "Added", v.ID)
		},
	})
}

func (c *Controller) removeFromList(ctx context.Context, req Request) error {
	l := listMenus[req.Action.Object]
	return c.collect(ctx, req, collectStep{
		kind:   prompt.KindNumeric,
		ask:    fmt.Sprintf("Send the id to remove from <b>%s</b>.", l.title),
		parent: l.parent,
		apply: func(ctx context.Context, v prompt.Value) (string, error) {
			if l.name == settings.Admins && v.ID == req.UserID {
				return "", ErrSelfRemovalForbidden
			}
			found, err := c.store.Contains(ctx, l.name, v.ID)
			if err != nil {
				return "", err
			}
			if !found {
				return "", settings.ErrNotFound
			}
			if err := c.store.RemoveFromList(ctx, l.name, v.ID); err != nil {
				return "", err
			}
			return listResult(ctx, c.store, l, "Removed", v.ID)
		},
	})
}

func listResult(ctx context.Context, store *settings.Store, l listMenu, verb string, id int64) (string, error) {
	items, err := store.List(ctx, l.name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<b>%s</b> %s\n\n%s", verb, format.Code(strconv.FormatInt(id, 10)),
		ListView(l.title, "", items).Text), nil
}

func (c *Controller) updateText(ctx context.Context, req Request) error {
	f := textFields[req.Action.Object]
	ask := fmt.Sprintf("Send the new <b>%s</b>.", f.label)
	if f.kind == prompt.KindURL {
		ask = fmt.Sprintf("Send an image URL (http/https) for <b>%s</b>.", f.label)
	}
	return c.collect(ctx, req, collectStep{
		kind:   f.kind,
		ask:    ask,
		parent: f.parent,
		apply: func(ctx context.Context, v prompt.Value) (string, error) {
			if err := c.store.SetText(ctx, f.name, v.Text); err != nil {
				return "", err
			}
			return fmt.Sprintf("<b>%s has been updated:</b>\n%s", f.label, format.Blockquote(v.Text)), nil
		},
	})
}

func (c *Controller) deleteText(ctx context.Context, req Request) error {
	f := textFields[req.Action.Object]
	if err := c.store.DeleteText(ctx, f.name); err != nil {
		return err
	}
	return c.renderParent(ctx, req, f.parent)
}

func (c *Controller) updateDBChannel(ctx context.Context, req Request) error {
	return c.collect(ctx, req, collectStep{
		kind:   prompt.KindNumeric,
		ask:    "Send the id of the new database channel. The bot must be an admin there.",
		parent: "menu dbchannel",
		apply: func(ctx context.Context, v prompt.Value) (string, error) {
			info, err := req.Surface.ResolveChat(ctx, v.ID)
			if err != nil {
				logger.Warn(ctx, component, "menu.resolve_chat",
					slog.Int64("chat_id", v.ID),
					slog.String("err", err.Error()),
				)
				return "", ErrChatUnavailable
			}
			if err := c.store.SetInt(ctx, settings.DatabaseChatIDOverride, v.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("<b>DB Channel has been changed to:</b>\nID: %s\nName: %s",
				format.Code(strconv.FormatInt(v.ID, 10)),
				format.Bold(format.OrDefault(info.Name(), "-"))), nil
		},
	})
}

func (c *Controller) resetDBChannel(ctx context.Context, req Request) error {
	if err := c.store.Delete(ctx, settings.DatabaseChatIDOverride); err != nil {
		return err
	}
	return c.renderParent(ctx, req, "menu dbchannel")
}

// collectStep describes one prompt-and-collect interaction. apply returns the
// HTML success text.
type collectStep struct {
	kind   prompt.Kind
	ask    string
	parent string
	apply  func(ctx context.Context, v prompt.Value) (string, error)
}

// collect opens a prompt for the requester, renders it and waits for exactly
// one outcome. Input errors are rendered with a retry button; nothing is
// retried implicitly.
func (c *Controller) collect(ctx context.Context, req Request, step collectStep) error {
	key := req.key()
	retry := normalize(req.Action).Key()

	c.mu.Lock()
	sess := c.prompts.Open(ctx, key, c.timeout, step.kind)
	c.marks[key] = promptMark{session: sess.ID, message: req.Surface.MessageID()}
	c.mu.Unlock()
	defer c.unmark(key, sess.ID)
	ctx = logger.WithSession(ctx, sess.ID)

	if err := req.Surface.Render(ctx, PromptView(step.ask, c.timeout)); err != nil {
		sess.Cancel()
		return fmt.Errorf("render prompt: %w", err)
	}

	out := sess.Await(ctx)
	switch out.Status {
	case prompt.Fulfilled:
		if out.Reply.MessageID != 0 {
			if err := req.Surface.Discard(ctx, out.Reply.MessageID); err != nil {
				logger.Warn(ctx, component, "menu.discard_reply",
					slog.String("err", err.Error()),
				)
			}
		}
		v, err := prompt.Validate(step.kind, out.Reply.Text)
		if err == nil {
			var text string
			text, err = step.apply(ctx, v)
			if err == nil {
				return req.Surface.Render(ctx, SuccessView(text, step.parent))
			}
		}
		reason, ok := rejection(err)
		if !ok {
			return err
		}
		logger.Info(ctx, component, "menu.input",
			slog.String("action", retry),
			slog.String("status", "rejected"),
			slog.String("err", err.Error()),
		)
		return req.Surface.Render(ctx, RejectedView(reason, retry, step.parent))
	case prompt.TimedOut:
		return req.Surface.Render(ctx, TimeoutView(retry, step.parent))
	case prompt.Superseded:
		if c.shownElsewhere(key, sess.ID, req.Surface.MessageID()) {
			return nil
		}
		return c.renderParent(ctx, req, step.parent)
	case prompt.Cancelled:
		if ctx.Err() != nil {
			return nil
		}
		return c.renderParent(ctx, req, step.parent)
	}
	return nil
}

// shownElsewhere reports whether a newer prompt for key now owns message, in
// which case re-rendering it would overwrite that prompt.
func (c *Controller) shownElsewhere(key prompt.Key, session string, message int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.marks[key]
	return ok && m.session != session && m.message == message
}

func (c *Controller) unmark(key prompt.Key, session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.marks[key]; ok && m.session == session {
		delete(c.marks, key)
	}
}
