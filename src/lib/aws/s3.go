package aws

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func GetS3Client() *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := s3.NewFromConfig(cfg)
	return svc
}

// S3UploadPhoto stores a listing photo and returns a presigned GET URL
// valid for an hour.
func S3UploadPhoto(key string, f string) (*string, error) {
	photosBucket := os.Getenv("S3_PHOTOS_BUCKET")
	file, err := os.Open(f)
	if err != nil {
		log.Printf("Could not open file to upload: %s\n", err.Error())
		return nil, err
	}
	defer file.Close()
	client := GetS3Client()
	_, err = client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(photosBucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	err = s3.NewObjectExistsWaiter(client).Wait(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(photosBucket),
		Key:    aws.String(key),
	}, time.Minute)
	if err != nil {
		log.Printf("Failed attempt to wait for object %s to exist: %s\n", key, err.Error())
		return nil, err
	}
	log.Printf("Added object '%s' to bucket '%s'", key, photosBucket)
	return S3PresignPhoto(key)
}

func S3PresignPhoto(key string) (*string, error) {
	photosBucket := os.Getenv("S3_PHOTOS_BUCKET")
	client := GetS3Client()
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(photosBucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = time.Duration(3600 * time.Second)
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return nil, err
	}
	return &r.URL, nil
}

func S3ObjectExists(key string) (bool, error) {
	photosBucket := os.Getenv("S3_PHOTOS_BUCKET")
	client := GetS3Client()
	_, err := client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(photosBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
