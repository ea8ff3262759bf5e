package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/talentbridge/sales-crm-platform/internal/config"
	"github.com/talentbridge/sales-crm-platform/internal/storage"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so all binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case s3.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: cfg.AWSRegion,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// BuildAttachmentStore returns the S3-backed attachment store when a bucket is
// configured and an in-memory store otherwise.
func BuildAttachmentStore(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) storage.AttachmentStore {
	if strings.TrimSpace(cfg.AttachmentsBucket) == "" {
		if logger != nil {
			logger.Warn("no attachments bucket configured; attachments held in memory")
		}
		return storage.NewMemoryStore()
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// LocalStack needs path-style addressing.
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	return storage.NewS3Store(client, cfg.AttachmentsBucket, cfg.PublicBaseURL, logger)
}
