package common

import (
	"log"
	"prs/src/lib"
	awslib "prs/src/lib/aws"
	"prs/src/types"

	"github.com/tidwall/gjson"
)

func SQSConsumers() {
	dlq := awslib.NewSQSConsumer("DLQ", func(payload string) {
		log.Println("DLQ: message received")
	})
	dlq.Listen()

	go PaymentStatusUpdatesConsumer()
	go AgreementsExpiredConsumer()
	go AgreementsSweepConsumer()
}

func SNSSubscribes() {
	agreementsExpired := awslib.NewSNSSubscriber("AgreementsExpired")
	agreementsExpired.Subscribe("sqs", lib.GetQueueArn("AgreementsExpired"))
	agreementsSweep := awslib.NewSNSSubscriber("AgreementsSweep")
	agreementsSweep.Subscribe("sqs", lib.GetQueueArn("AgreementsSweep"))
	paymentUpdates := awslib.NewSNSSubscriber("PaymentStatusUpdates")
	paymentUpdates.Subscribe("sqs", lib.GetQueueArn("PaymentStatusUpdates"))
}

// AgreementsSweepConsumer reacts to scheduled end-date jobs. The payload
// names one agreement but the sweep re-checks every lapsed one, so a
// late or duplicate message stays harmless.
func AgreementsSweepConsumer() {
	qname := "AgreementsSweep"
	c := awslib.NewSQSConsumer(qname, func(body string) {
		if _, err := RunExpirationSweep(); err != nil {
			log.Printf("[%s]: Sweep failed: %s\n", qname, err.Error())
		}
	})
	c.Listen()
}

// PaymentStatusUpdatesConsumer applies queued payment status changes
// through the transition table, so a stale or duplicate message cannot
// push a payment backwards.
func PaymentStatusUpdatesConsumer() {
	qname := "PaymentStatusUpdates"
	c := awslib.NewSQSConsumer(qname, func(body string) {
		HandlePaymentStatusUpdate(qname, body)
	})
	c.Listen()
}

func HandlePaymentStatusUpdate(source string, body string) {
	if !gjson.Valid(body) {
		log.Printf("[%s]: Received invalid json body. Aborting", source)
		return
	}
	id := gjson.Get(body, "id")
	status := gjson.Get(body, "status")
	if !id.Exists() || !status.Exists() {
		log.Printf("[%s]: Message missing id or status. Aborting", source)
		return
	}
	paymentID := uint(id.Uint())
	newStatus := types.PaymentStatus(status.String())
	result, err := UpdatePaymentStatus(paymentID, newStatus)
	if err != nil {
		log.Printf("[%s]: Error updating payment [%d]: %s\n", source, paymentID, err.Error())
		return
	}
	if !result.Success {
		log.Printf("[%s]: Update rejected for payment [%d]: %s\n", source, paymentID, result.Message)
		return
	}
	if newStatus == types.PAYMENT_COMPLETED {
		if _, err := OnPaymentCompleted(paymentID); err != nil {
			log.Printf("[%s]: Error accepting booking for payment [%d]: %s\n", source, paymentID, err.Error())
		}
	}
}

// KafkaConsumers mirrors the SQS consumers for local development, where
// the broker is a Kafka container instead of SNS/SQS.
func KafkaConsumers() {
	lib.KafkaConsumer("payments", []string{"payment-status-updates"}, func(body string) {
		HandlePaymentStatusUpdate("payment-status-updates", body)
	})
	lib.KafkaConsumer("sweeper", []string{"AgreementsSweep"}, func(body string) {
		if _, err := RunExpirationSweep(); err != nil {
			log.Printf("[AgreementsSweep]: Sweep failed: %s\n", err.Error())
		}
	})
	lib.KafkaConsumer("agreements", []string{"agreements-expired"}, func(body string) {
		if !gjson.Valid(body) {
			log.Println("[agreements-expired]: Received invalid json body. Aborting")
			return
		}
		ids := []uint{}
		for _, v := range gjson.Get(body, "agreements").Array() {
			ids = append(ids, uint(v.Uint()))
		}
		NotifyExpiredAgreements(ids)
	})
}

func AgreementsExpiredConsumer() {
	qname := "AgreementsExpired"
	c := awslib.NewSQSConsumer(qname, func(body string) {
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", qname)
			return
		}
		ids := []uint{}
		for _, v := range gjson.Get(body, "agreements").Array() {
			ids = append(ids, uint(v.Uint()))
		}
		log.Printf("[%s]: %d agreements expired", qname, len(ids))
		NotifyExpiredAgreements(ids)
	})
	c.Listen()
}
