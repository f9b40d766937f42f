package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsched "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func awsGetSdkClient() (*aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	iamRole := os.Getenv("AWS_IAM_ROLE_ARN")
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(context.TODO(), &sts.AssumeRoleInput{
		RoleArn:         aws.String(iamRole),
		RoleSessionName: aws.String("api-session"),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return nil, err
	}
	creds := output.Credentials
	cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
	if err != nil {
		log.Printf("Error configuration: %s\n", err.Error())
		return nil, err
	}

	return &cfg, nil
}

func AWSGetSchedulerClient() *awsched.Client {
	cfg, _ := awsGetSdkClient()
	client := awsched.NewFromConfig(*cfg)

	return client
}
func AWSGetS3Client() *s3.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize S3: %s\n", err.Error())
		return nil
	}

	client := s3.NewFromConfig(*cfg)
	return client
}
func AWSGetSQSClient() *sqs.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	client := sqs.NewFromConfig(*cfg)
	return client
}
func AWSGetSNSClient() *sns.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SNS client: %s\n", err.Error())
		return nil
	}
	client := sns.NewFromConfig(*cfg)
	return client
}
func AWSGetSecretsManagerClient() *secretsmanager.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SecretsManager client: %s\n", err.Error())
		return nil
	}
	client := secretsmanager.NewFromConfig(*cfg)
	return client
}

func GetTopicArn(topic string) string {
	region := os.Getenv("AWS_REGION")
	mid := os.Getenv("AWS_MEMBER_ID")
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", region, mid, topic)
}

func GetQueueArn(queue string) string {
	region := os.Getenv("AWS_REGION")
	mid := os.Getenv("AWS_MEMBER_ID")
	return fmt.Sprintf("arn:aws:sqs:%s:%s:%s", region, mid, queue)
}

func SNSPublishMessage(topic string, message string) error {
	client := AWSGetSNSClient()
	topicArn := GetTopicArn(topic)
	output, err := client.Publish(context.TODO(), &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Message:  aws.String(message),
	})
	if err != nil {
		log.Printf("Error publishing to topic [%s]: %s\n", topic, err.Error())
		return err
	}
	log.Printf("Published message to [%s]: %s\n", topic, *output.MessageId)
	return nil
}

func SQSProduceMessage(queue string, body string) error {
	client := AWSGetSQSClient()
	qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
		QueueName: aws.String(queue),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", queue, err.Error())
		return err
	}
	_, err = client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("Error sending message to queue [%s]: %s\n", queue, err.Error())
		return err
	}
	return nil
}

func SQSDeleteMessage(c *sqs.Client, qurl *string, msg *sqsTypes.Message) {
	_, err := c.DeleteMessage(context.TODO(), &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("Error deleting message from queue: %s\n", err.Error())
		return
	}
}
