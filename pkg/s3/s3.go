package s3

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// ItfS3 archives finished conversations as JSON records for training-data
// curation. Records land under transcripts/<year>/<month>/<conversation-id>.json.
type ItfS3 interface {
	ArchiveConversation(record ConversationRecord) (string, error)
}

// ConversationRecord is the top-level structure archived for model tuning and
// review-queue curation.
type ConversationRecord struct {
	Version        string           `json:"version"`
	ConversationID string           `json:"conversation_id"`
	VisitorID      string           `json:"visitor_id"`
	ArchivedAt     time.Time        `json:"archived_at"`
	MessageCount   int              `json:"message_count"`
	Outcome        string           `json:"outcome"` // escalated | reviewed | completed
	LeadScore      float64          `json:"lead_score"`
	ServedVariants []string         `json:"served_variants,omitempty"`
	Messages       []MessageTurn    `json:"messages"`
}

type MessageTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type s3Client struct {
	session    *session.Session
	bucketName string
}

func New() (ItfS3, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		session:    sess,
		bucketName: os.Getenv("AWS_BUCKET_NAME"),
	}, nil
}

func newSession() (*session.Session, error) {
	region := os.Getenv("AWS_REGION")
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")

	if region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("AWS credentials not fully configured")
	}

	return session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
}

func (s *s3Client) ArchiveConversation(record ConversationRecord) (string, error) {
	if record.Version == "" {
		record.Version = "1.0"
	}
	if record.ArchivedAt.IsZero() {
		record.ArchivedAt = time.Now().UTC()
	}

	body, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to marshal conversation record: %w", err)
	}

	key := fmt.Sprintf("transcripts/%s/%s.json",
		record.ArchivedAt.Format("2006/01"), record.ConversationID)

	uploader := s3manager.NewUploader(s.session)
	output, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}

	return output.Location, nil
}
