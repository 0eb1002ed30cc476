package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SLAWWWW/CommunityCompass/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// AvatarService issues pre-signed S3 upload URLs for profile pictures
type AvatarService struct {
	users    repository.UserStore
	s3Client *s3.Client
	s3Bucket string
	region   string
	endpoint string
}

// NewAvatarService creates a new avatar service
func NewAvatarService(
	users repository.UserStore,
	awsRegion, s3Bucket, accessKey, secretKey, endpoint string,
) (*AvatarService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsRegion),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &AvatarService{
		users:    users,
		s3Client: s3Client,
		s3Bucket: s3Bucket,
		region:   awsRegion,
		endpoint: endpoint,
	}, nil
}

// UploadResponse represents the response with a pre-signed upload URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	AvatarURL string `json:"avatar_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetUploadURL generates a pre-signed URL for uploading a user's avatar and
// records the resulting public URL on the profile.
func (s *AvatarService) GetUploadURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}

	s3Key := fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(s3Key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = 5 * time.Minute
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	avatarURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.region, s3Key)
	if s.endpoint != "" {
		avatarURL = fmt.Sprintf("%s/%s/%s", s.endpoint, s.s3Bucket, s3Key)
	}

	if err := s.users.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		return nil, fmt.Errorf("failed to record avatar url: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		AvatarURL: avatarURL,
		ExpiresIn: 300,
	}, nil
}
