package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/drive-backend/internal/drive/biz"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/mailer"
	"go.uber.org/zap"
)

const notifyTimeout = 2 * time.Minute

// MailSender 发送邮件（*mailer.Mailer 满足该接口）
type MailSender interface {
	Send(ctx context.Context, msg *mailer.Message) error
}

// Submitter 异步执行任务（*workerpool.Pool 满足该接口）
type Submitter interface {
	Submit(task func()) error
}

// MailNotifier 通过邮件通知新授权，投递在协程池中进行
type MailNotifier struct {
	sender  MailSender
	pool    Submitter
	baseURL string
	logger  *logger.Logger
}

func NewMailNotifier(sender MailSender, pool Submitter, baseURL string, log *logger.Logger) *MailNotifier {
	return &MailNotifier{sender: sender, pool: pool, baseURL: baseURL, logger: log.Named("share-notifier")}
}

func (n *MailNotifier) ShareCreated(ctx context.Context, notice biz.ShareNotice) {
	msg := shareMessage(notice, n.baseURL)
	log := n.logger.WithContext(ctx).With(zap.String("to", notice.RecipientEmail))

	err := n.pool.Submit(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.sender.Send(sendCtx, msg); err != nil {
			log.Warn("share notification failed", zap.Error(err))
		}
	})
	if err != nil {
		log.Warn("failed to queue share notification", zap.Error(err))
	}
}

func shareMessage(n biz.ShareNotice, baseURL string) *mailer.Message {
	greeting := "Hi,"
	if n.RecipientName != "" {
		greeting = fmt.Sprintf("Hi %s,", n.RecipientName)
	}
	body := fmt.Sprintf("%s\n\n%s shared the %s %q with you as %s.\n\nOpen your drive to see it: %s\n",
		greeting, n.OwnerName, n.ItemType, n.ItemName, n.Role, baseURL)
	return &mailer.Message{
		To:      []string{n.RecipientEmail},
		Subject: fmt.Sprintf("%s shared %q with you", n.OwnerName, n.ItemName),
		Body:    body,
	}
}
