package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	config "github.com/maheshrc27/reelpost/configs"
	"github.com/maheshrc27/reelpost/internal/models"
)

const s3KeyPrefix = "videos/"

// s3API is the part of *s3.Client the hosting uploader needs.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type UploadStats struct {
	Uploaded int
	Skipped  int
	Missing  int
}

// S3Service hosts local videos in a bucket so Instagram can fetch them by URL.
type S3Service struct {
	cfg       config.S3
	videosDir string
	client    s3API
	logger    *slog.Logger
}

func NewS3Service(ctx context.Context, cfg config.Config, logger *slog.Logger) (*S3Service, error) {
	if cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "" {
		return nil, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	if cfg.S3.BucketName == "" {
		return nil, errors.New("AWS_S3_BUCKET must be set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")),
		awsconfig.WithRegion(cfg.S3.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Service(cfg, client, logger), nil
}

func newS3Service(cfg config.Config, client s3API, logger *slog.Logger) *S3Service {
	return &S3Service{
		cfg:       cfg.S3,
		videosDir: cfg.VideosDir,
		client:    client,
		logger:    logger.With("bucket", cfg.S3.BucketName),
	}
}

// UploadVideos makes sure every video with a local file has a public URL.
// Videos already in existing keep their URL; objects already in the bucket
// are reused. The returned map includes every entry of existing.
func (s *S3Service) UploadVideos(ctx context.Context, videos []models.VideoMetadata, existing models.VideoURLMap) (models.VideoURLMap, UploadStats, error) {
	urls := make(models.VideoURLMap, len(existing)+len(videos))
	for k, v := range existing {
		urls[k] = v
	}

	var stats UploadStats
	for _, video := range videos {
		path := filepath.Join(s.videosDir, video.FileName)
		key := s3KeyPrefix + video.FileName
		logger := s.logger.With("video_id", video.VideoID, "file", video.FileName)

		if _, err := os.Stat(path); err != nil {
			logger.Warn("video file not found, skipping")
			stats.Missing++
			continue
		}

		if _, ok := existing[video.VideoID]; ok {
			logger.Info("already uploaded, skipping")
			stats.Skipped++
			continue
		}

		exists, err := s.objectExists(ctx, key)
		if err != nil {
			logger.Warn("could not check bucket, uploading anyway", "error", err)
		}
		if exists {
			logger.Info("already in bucket, skipping")
			urls[video.VideoID] = s.PublicURL(key)
			stats.Skipped++
			continue
		}

		if err := s.upload(ctx, path, key); err != nil {
			return urls, stats, fmt.Errorf("upload %s: %w", video.FileName, err)
		}
		urls[video.VideoID] = s.PublicURL(key)
		stats.Uploaded++
		logger.Info("uploaded", "key", key)
	}

	return urls, stats, nil
}

func (s *S3Service) objectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.BucketName),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, nil
	}
	return false, err
}

func (s *S3Service) upload(ctx context.Context, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.BucketName),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(detectVideoContentType(path)),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return err
	}
	return nil
}

// PublicURL is the virtual-hosted URL of key, or a path-style URL under the
// custom endpoint when one is configured.
func (s *S3Service) PublicURL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	escaped := strings.Join(segments, "/")

	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.Endpoint, "/"), s.cfg.BucketName, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.BucketName, s.cfg.Region, escaped)
}
