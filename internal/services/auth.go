package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdonin/gw-code-review/internal/jwt"
	"github.com/avdonin/gw-code-review/internal/logger"
	"github.com/avdonin/gw-code-review/internal/models"
	"github.com/avdonin/gw-code-review/internal/repositories"
)

// Error variables
var (
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password, so responses cannot be used for username enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrServerMisconfigured = errors.New("authentication is not configured on the server")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error)
}

// TokenIssuer defines an interface for generating session tokens.
type TokenIssuer interface {
	Generate(ctx context.Context, userID uuid.UUID, username string) (string, error)
}

// KafkaWriter defines the minimal Kafka producer interface for audit events.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AuthService handles registration and login.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	tokens      TokenIssuer
	kafkaWriter KafkaWriter
}

// NewAuthService creates a new AuthService instance. kafkaWriter may be nil;
// audit publishing is then skipped.
func NewAuthService(reader UserReader, writer UserWriter, tokens TokenIssuer, kafkaWriter KafkaWriter) *AuthService {
	return &AuthService{
		reader:      reader,
		writer:      writer,
		tokens:      tokens,
		kafkaWriter: kafkaWriter,
	}
}

// Register creates a new user with a bcrypt-hashed password. No token is
// issued at registration; the user logs in afterwards.
func (svc *AuthService) Register(ctx context.Context, username, email, password string) error {
	existing, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if existing != nil {
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	userID, err := svc.writer.Save(ctx, username, email, string(hashedPassword))
	if err != nil {
		// The store resolves racing duplicate registrations.
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	logger.Log.Infow("user registered", "username", username)
	svc.publishAuditEvent(ctx, "user.registered", userID, username)
	return nil
}

// Login authenticates a user and returns a signed token plus the user ID.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, uuid.UUID, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", uuid.Nil, err
	}
	if user == nil {
		return "", uuid.Nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", uuid.Nil, ErrInvalidCredentials
	}

	token, err := svc.tokens.Generate(ctx, user.UserID, user.Username)
	if err != nil {
		if errors.Is(err, jwt.ErrMissingSecret) {
			logger.Log.Errorw("signing secret is not configured")
			return "", uuid.Nil, ErrServerMisconfigured
		}
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", uuid.Nil, err
	}

	logger.Log.Infow("user logged in", "username", username)
	svc.publishAuditEvent(ctx, "user.login", user.UserID, user.Username)
	return token, user.UserID, nil
}

// publishAuditEvent publishes a best-effort audit event to Kafka.
func (svc *AuthService) publishAuditEvent(ctx context.Context, operation string, userID uuid.UUID, username string) {
	if svc.kafkaWriter == nil {
		return
	}

	event := models.AuditEvent{
		EventID:   uuid.New().String(),
		Timestamp: time.Now().Unix(),
		UserID:    userID.String(),
		Username:  username,
		Operation: operation,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("failed to marshal audit event", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish audit event", "event_id", event.EventID, "error", err)
		return
	}

	logger.Log.Debugw("audit event published", "event_id", event.EventID, "operation", operation)
}
