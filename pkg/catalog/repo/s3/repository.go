package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/storage-catalog/pkg/catalog"
)

// Config options for the S3 repository
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Prefix          string // Key prefix for entity documents (default: "storage-services")
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
}

// Client is the subset of the S3 API the repository uses.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Repository stores each storage service as a JSON object in a bucket.
// Writes are serialized within the process; name uniqueness is checked by
// scanning the prefix.
type Repository struct {
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	mu       sync.Mutex
}

// New creates an S3 backed repository from config
func New(config Config) (catalog.Repository, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Options...), config.Bucket, config.Prefix), nil
}

// NewWithClient creates a repository on top of an existing client
func NewWithClient(client Client, bucket, prefix string) *Repository {
	if prefix == "" {
		prefix = "storage-services"
	}
	return &Repository{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
	}
}

func (r *Repository) key(id string) string {
	return path.Join(r.prefix, id+".json")
}

func (r *Repository) CreateStorageService(ctx context.Context, svc *catalog.StorageService) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.exists(ctx, svc.ID)
	if err != nil {
		return err
	}
	if exists {
		return catalog.ErrStorageServiceExists
	}
	if err := r.checkNameFree(ctx, svc.Name, svc.ID); err != nil {
		return err
	}

	return r.put(ctx, svc, nil)
}

func (r *Repository) GetStorageService(ctx context.Context, id string) (*catalog.StorageService, error) {
	return r.get(ctx, r.key(id))
}

func (r *Repository) GetStorageServiceByName(ctx context.Context, name string) (*catalog.StorageService, error) {
	services, err := r.ListStorageServices(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, catalog.ErrStorageServiceNotFound
	}
	return services[0], nil
}

// UpdateStorageService overwrites the document while its stored version is
// still expectedVersion. The put is conditional on the ETag that was read.
func (r *Repository) UpdateStorageService(ctx context.Context, svc *catalog.StorageService, expectedVersion float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, etag, err := r.getWithETag(ctx, r.key(svc.ID))
	if err != nil {
		return err
	}
	if current.CurrentVersion() != expectedVersion {
		return catalog.ErrStorageServiceConflict
	}
	if current.Name != svc.Name {
		if err := r.checkNameFree(ctx, svc.Name, svc.ID); err != nil {
			return err
		}
	}

	return r.put(ctx, svc, etag)
}

func (r *Repository) DeleteStorageService(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return catalog.ErrStorageServiceNotFound
	}

	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete storage service %s: %w", id, err)
	}
	return nil
}

func (r *Repository) ListStorageServices(ctx context.Context, name string) ([]*catalog.StorageService, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix + "/"),
	})

	var result []*catalog.StorageService
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list storage services: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			svc, err := r.get(ctx, key)
			if errors.Is(err, catalog.ErrStorageServiceNotFound) {
				// Deleted between list and get.
				continue
			}
			if err != nil {
				return nil, err
			}
			if name != "" && svc.Name != name {
				continue
			}
			result = append(result, svc)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *Repository) checkNameFree(ctx context.Context, name, id string) error {
	services, err := r.ListStorageServices(ctx, name)
	if err != nil {
		return err
	}
	for _, other := range services {
		if other.ID != id {
			return catalog.ErrStorageServiceExists
		}
	}
	return nil
}

func (r *Repository) put(ctx context.Context, svc *catalog.StorageService, ifMatch *string) error {
	doc, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to encode storage service: %w", err)
	}

	_, err = r.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(svc.ID)),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
		IfMatch:     ifMatch,
	})
	if err != nil {
		if isPreconditionFailed(err) {
			return catalog.ErrStorageServiceConflict
		}
		return fmt.Errorf("failed to store storage service %s: %w", svc.ID, err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, key string) (*catalog.StorageService, error) {
	svc, _, err := r.getWithETag(ctx, key)
	return svc, err
}

func (r *Repository) getWithETag(ctx context.Context, key string) (*catalog.StorageService, *string, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, catalog.ErrStorageServiceNotFound
		}
		return nil, nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer out.Body.Close()

	doc, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	svc, err := catalog.Decode(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("stored storage service %s is invalid: %w", key, err)
	}
	return svc, out.ETag, nil
}

func (r *Repository) exists(ctx context.Context, id string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(id)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check storage service %s: %w", id, err)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	return false
}
