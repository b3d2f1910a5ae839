package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"reminders/internal/model"
	"reminders/internal/service"
)

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves a single owner chat on top of the reminder store.
type Bot struct {
	api    *tgbotapi.BotAPI
	client sender
	store  *service.ReminderStore
	chatID int64
	now    func() time.Time

	composers     map[int64]*composer
	confirmations map[int64]string
	mu            sync.Mutex
}

func New(token string, store *service.ReminderStore, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	b := newBot(api, store, chatID)
	b.api = api
	return b, nil
}

func newBot(client sender, store *service.ReminderStore, chatID int64) *Bot {
	b := &Bot{
		client:        client,
		store:         store,
		chatID:        chatID,
		now:           time.Now,
		composers:     make(map[int64]*composer),
		confirmations: make(map[int64]string),
	}
	store.SetOpenHandler(func(r model.Reminder) {
		if err := b.sendDetail(b.chatID, r); err != nil {
			log.Printf("open reminder %s: %v", r.ID, err)
		}
	})
	return b
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot api is not configured")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || update.Message.Chat.ID != b.chatID {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

// Deliver sends a fired notification to the owner chat.
func (b *Bot) Deliver(_ context.Context, n service.Notification) error {
	text := fmt.Sprintf("🔔 <b>%s</b>\n%s", escape(normalizeTitle(n.Title)), escape(n.Body))
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = notificationKeyboard(n.ReminderID)
	_, err := b.client.Send(msg)
	return err
}

// SendDigest sends the reminder summary to the owner chat.
func (b *Bot) SendDigest(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return b.sendText(b.chatID, service.Digest(b.store.List(), b.now(), service.HTMLMarkup))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearComposer(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Cancelled.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", chatID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if c := b.getComposer(chatID); c != nil {
		log.Printf("[info] composer stage %d from %d", c.stage, chatID)
		return b.handleComposer(ctx, chatID, c, msg.Text)
	}

	switch strings.TrimSpace(msg.Text) {
	case menuLabelNew:
		return b.startComposer(chatID, newComposer())
	case menuLabelList:
		return b.sendList(chatID)
	case menuLabelHelp:
		return b.handleHelp(chatID)
	}

	return b.sendText(chatID, "I didn't get that. Send /new to add a reminder or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(chatID)
	case "new":
		return b.startComposer(chatID, newComposer())
	case "list":
		return b.sendList(chatID)
	case "report":
		return b.SendDigest(ctx)
	case "cancel":
		b.clearComposer(chatID)
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "⏪ Cancelled.")
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := "there"
	if msg.From != nil && strings.TrimSpace(msg.From.FirstName) != "" {
		name = strings.TrimSpace(msg.From.FirstName)
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your reminders and ping you on time.</b>\n\n"+
			"• /new — add a reminder\n"+
			"• /list — show reminders\n"+
			"• /report — send the summary now\n"+
			"• /help — tips\n"+
			"• /cancel — stop the current input",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "ℹ️ <b>Tips</b>\n" +
		"• /new walks you through title, notes or checklist, time and repeat\n" +
		"• /list shows every reminder; tap one to edit, complete or delete it\n" +
		fmt.Sprintf("• custom repeats run at least every %d minutes\n", model.MinCustomRepeatMinutes) +
		"• tap «Open» on a notification to see the reminder\n" +
		"• /report sends the summary\n" +
		"• /cancel stops the current input"
	return b.sendText(chatID, text)
}

func (b *Bot) startComposer(chatID int64, c *composer) error {
	b.clearConfirmation(chatID)
	b.setComposer(chatID, c)
	intro := "🆕 New reminder."
	if c.editing() {
		intro = "✏️ Editing the reminder. Tap «" + btnSkip + "» to keep a value."
	}
	if err := b.sendText(chatID, intro); err != nil {
		return err
	}
	return b.sendPrompt(chatID, c)
}

func (b *Bot) handleComposer(ctx context.Context, chatID int64, c *composer, text string) error {
	if err := c.Apply(text); err != nil {
		if errors.Is(err, errRetry) {
			if sendErr := b.sendText(chatID, err.Error()); sendErr != nil {
				return sendErr
			}
		} else {
			return err
		}
	}
	if !c.Done() {
		return b.sendPrompt(chatID, c)
	}
	return b.finishComposer(ctx, chatID, c)
}

func (b *Bot) finishComposer(ctx context.Context, chatID int64, c *composer) error {
	var (
		saved service.Saved
		err   error
	)
	if c.editing() {
		var ok bool
		saved, ok, err = b.store.Update(ctx, c.editingID, c.draft)
		if err == nil && !ok {
			b.clearComposer(chatID)
			return b.sendText(chatID, "That reminder no longer exists.")
		}
	} else {
		saved, err = b.store.Create(ctx, c.draft)
	}

	if err != nil {
		c.rewind(err)
		if c.Done() {
			b.clearComposer(chatID)
			return b.sendText(chatID, fmt.Sprintf("Couldn't save the reminder: %s", escape(err.Error())))
		}
		if sendErr := b.sendText(chatID, fmt.Sprintf("⚠️ %s", escape(validationMessage(err)))); sendErr != nil {
			return sendErr
		}
		return b.sendPrompt(chatID, c)
	}

	b.clearComposer(chatID)
	log.Printf("[info] reminder saved id=%s chat=%d", saved.Reminder.ID, chatID)

	header := "✅ <b>Reminder saved</b>"
	if saved.IntervalRaised {
		header += fmt.Sprintf("\n⚠️ Custom repeats run at most every %d minutes, so the interval was raised.", model.MinCustomRepeatMinutes)
	}
	if err := b.sendText(chatID, header); err != nil {
		return err
	}
	return b.sendDetail(chatID, saved.Reminder)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		return "The title can't be empty."
	case errors.Is(err, model.ErrEmptyChecklist):
		return "A checklist needs at least one item."
	default:
		return err.Error()
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || cb.Message.Chat == nil || cb.Message.Chat.ID != b.chatID {
		return nil
	}
	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data
	log.Printf("[info] callback chat=%d data=%s", chatID, data)

	if reminderID, todoID, ok := parseTodoCallback(data); ok {
		r, found := b.store.ToggleTodoItem(ctx, reminderID, todoID)
		if !found {
			return b.sendText(chatID, "Item not found.")
		}
		return b.sendDetail(chatID, r)
	}
	if id, ok := parseCallback(data, cbOpenPrefix); ok {
		if !b.store.RequestOpen(id) {
			return b.sendText(chatID, "Reminder not found.")
		}
		return nil
	}
	if id, ok := parseCallback(data, cbEditPrefix); ok {
		r, found := b.store.Get(id)
		if !found {
			return b.sendText(chatID, "Reminder not found.")
		}
		return b.startComposer(chatID, editComposer(r))
	}
	if id, ok := parseCallback(data, cbDonePrefix); ok {
		r, found := b.store.ToggleCompleted(ctx, id)
		if !found {
			return b.sendText(chatID, "Reminder not found.")
		}
		return b.sendDetail(chatID, r)
	}
	if id, ok := parseCallback(data, cbDeletePrefix); ok {
		return b.askDeleteConfirmation(chatID, id)
	}
	if id, ok := parseCallback(data, cbConfirmPrefix); ok {
		return b.deleteAndRefresh(ctx, chatID, id)
	}
	if _, ok := parseCallback(data, cbCancelPrefix); ok {
		b.clearConfirmation(chatID)
		return b.sendText(chatID, "↩️ Kept.")
	}
	return nil
}

func (b *Bot) askDeleteConfirmation(chatID int64, id string) error {
	r, ok := b.store.Get(id)
	if !ok {
		return b.sendText(chatID, "Reminder not found.")
	}
	b.setConfirmation(chatID, id)
	text := fmt.Sprintf("Delete «%s»?", escape(normalizeTitle(r.Title)))
	return b.sendWithReplyMarkup(chatID, text, confirmDeleteKeyboard(id))
}

func (b *Bot) deleteAndRefresh(ctx context.Context, chatID int64, id string) error {
	pending, ok := b.getConfirmation(chatID)
	b.clearConfirmation(chatID)
	if !ok || pending != id {
		return b.sendText(chatID, "Nothing to confirm.")
	}
	r, found := b.store.Get(id)
	if !found || !b.store.Remove(ctx, id) {
		return b.sendText(chatID, "Reminder not found or already deleted.")
	}
	if err := b.sendText(chatID, fmt.Sprintf("🗑 «%s» deleted.", escape(normalizeTitle(r.Title)))); err != nil {
		return err
	}
	return b.sendList(chatID)
}

func (b *Bot) sendList(chatID int64) error {
	if !b.store.Loaded() {
		return b.sendText(chatID, "Still loading reminders, try again in a moment.")
	}
	reminders := b.store.List()
	if len(reminders) == 0 {
		return b.sendText(chatID, "No reminders yet. Send /new to add one.")
	}
	return b.sendWithReplyMarkup(chatID, fmt.Sprintf("📋 <b>Reminders</b> (%d)", len(reminders)), listKeyboard(reminders, b.now()))
}

func (b *Bot) sendDetail(chatID int64, r model.Reminder) error {
	next, _ := b.store.NextAlert(r.ID)
	return b.sendWithReplyMarkup(chatID, formatDetail(r, b.now(), next), detailKeyboard(r))
}

func (b *Bot) sendPrompt(chatID int64, c *composer) error {
	text, markup := c.prompt()
	if text == "" {
		return nil
	}
	return b.sendWithReplyMarkup(chatID, text, markup)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) getConfirmation(chatID int64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.confirmations[chatID]
	return id, ok
}

func (b *Bot) setConfirmation(chatID int64, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[chatID] = id
}

func (b *Bot) clearConfirmation(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, chatID)
}

func (b *Bot) setComposer(chatID int64, c *composer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.composers[chatID] = c
}

func (b *Bot) getComposer(chatID int64) *composer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.composers[chatID]
}

func (b *Bot) clearComposer(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.composers, chatID)
}
