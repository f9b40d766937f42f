package aws

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"prs/src/lib"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetDatabaseSecret loads the managed database credentials and exports
// them into the process environment before the first connection opens.
func GetDatabaseSecret() error {
	secretId := os.Getenv("DATABASE_SECRET_ID")
	if secretId == "" {
		return nil
	}
	client := lib.AWSGetSecretsManagerClient()
	output, err := client.GetSecretValue(context.TODO(), &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretId),
	})
	if err != nil {
		log.Printf("Error retrieving secret [%s]: %s\n", secretId, err.Error())
		return err
	}
	var secret map[string]string
	if err := json.Unmarshal([]byte(*output.SecretString), &secret); err != nil {
		log.Printf("Error deserializing secret [%s]: %s\n", secretId, err.Error())
		return err
	}
	os.Setenv("DATABASE_USER", secret["username"])
	os.Setenv("DATABASE_PASSWORD", secret["password"])
	return nil
}
