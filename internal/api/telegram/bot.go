package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "issue-classifier/internal/application"
	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/logging"
)

const (
	msgStart = `👋 Hi! I check photos of city problems: potholes, garbage, fallen trees and more.

📸 Send me a photo and I will tell you which issue it shows.

📋 Commands:
/check — check a photo
/types — list supported issue types
/describe — describe the last accepted photo
/help — help
/cancel — cancel the current operation`

	msgHelp = `ℹ️ How to use the bot:

1️⃣ Send a photo of the problem
2️⃣ The bot checks the image quality and classifies it
3️⃣ You get the detected issue type and its confidence

💡 Tips:
• Take the photo in daylight
• Keep the problem in the centre of the frame
• Avoid screenshots and blurry shots

📋 Commands:
/check — check a photo
/types — supported issue types
/describe — describe the last accepted photo
/cancel — cancel the current operation`

	msgAwaitingPhoto   = "📸 Send a photo of the issue to check."
	msgCancelled       = "❌ Cancelled. Send /check to start again."
	msgSendPhoto       = "📸 Please send a photo of the issue."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgProcessing      = "⏳ Processing the image..."
	msgBusy            = "⏳ Still working on your previous photo."
	msgProcessingError = "⚠️ Could not process the image. Please try another photo."
	msgNothingToDesc   = "ℹ️ Send a photo that gets accepted first, then use /describe."
	msgDescDisabled    = "ℹ️ Descriptions are not enabled on this server."
)

const downloadTimeout = 30 * time.Second

// Bot is the Telegram front end over the classification service.
type Bot struct {
	api        *tgbotapi.BotAPI
	sessions   *app.SessionService
	classifier *app.ClassificationService
	http       *http.Client
	log        *slog.Logger
}

func NewBot(token string, sessions *app.SessionService, classifier *app.ClassificationService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logging.New("telegram")
	log.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:        api,
		sessions:   sessions,
		classifier: classifier,
		http:       &http.Client{Timeout: downloadTimeout},
		log:        log,
	}, nil
}

// Run processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.sessions.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get session", "user_id", msg.From.ID, "error", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, session)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setState(ctx, userID, chatID, entity.StateIdle)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "types":
		b.sendMessage(chatID, formatIssueTypes(b.classifier.IssueTypes()))

	case "check":
		if _, err := b.sessions.BeginCheck(ctx, userID, chatID); err != nil {
			b.log.Error("begin check", "user_id", userID, "error", err)
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		if _, err := b.sessions.Cancel(ctx, userID, chatID); err != nil {
			b.log.Error("cancel", "user_id", userID, "error", err)
		}
		b.sendMessage(chatID, msgCancelled)

	case "describe":
		b.handleDescribe(ctx, chatID, session)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := msg.From.ID, msg.Chat.ID
	if session.State == entity.StateProcessing {
		b.sendMessage(chatID, msgBusy)
		return
	}

	b.setState(ctx, userID, chatID, entity.StateProcessing)
	b.sendMessage(chatID, msgProcessing)

	// largest available size
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", "user_id", userID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		b.setState(ctx, userID, chatID, entity.StateIdle)
		return
	}

	verdict, err := b.classifier.ClassifyBytes(ctx, imageData)
	if err != nil {
		b.log.Error("classify photo", "user_id", userID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, msgProcessingError)
		b.setState(ctx, userID, chatID, entity.StateIdle)
		return
	}

	if _, err := b.sessions.Finish(ctx, userID, chatID, imageData, verdict); err != nil {
		b.log.Error("save session", "user_id", userID, "error", err)
	}

	text := formatVerdict(verdict)
	if verdict.IsValid && b.classifier.DescriptionEnabled() {
		text += "\n\n📝 Send /describe for a short description of the issue."
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) handleDescribe(ctx context.Context, chatID int64, session *entity.Session) {
	if !b.classifier.DescriptionEnabled() {
		b.sendMessage(chatID, msgDescDisabled)
		return
	}
	issue, ok := session.DescribableIssue()
	if !ok {
		b.sendMessage(chatID, msgNothingToDesc)
		return
	}

	b.sendMessage(chatID, msgProcessing)
	img := &entity.SourceImage{Data: session.LastPhoto, ContentType: "image/jpeg"}
	text, err := b.classifier.Describe(ctx, img, issue)
	if err != nil {
		b.log.Error("describe photo", "user_id", session.UserID, "issue", issue, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	b.sendMessage(chatID, "📝 "+text)
}

func (b *Bot) setState(ctx context.Context, userID, chatID int64, state entity.SessionState) {
	if _, err := b.sessions.SetState(ctx, userID, chatID, state); err != nil {
		b.log.Error("set session state", "user_id", userID, "state", state, "error", err)
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}
