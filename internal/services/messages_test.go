package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"esgishoma-backend-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitInquiry(t *testing.T, env *testEnv) *models.ContactMessage {
	t.Helper()
	msg, err := env.reg.Messages.Submit(InquiryInput{
		Name:    "P. Niyonzima",
		Email:   "niyonzima@example.com",
		Subject: "Admission enquiry",
		Message: "When do applications for S1 open?",
	})
	require.NoError(t, err)
	return msg
}

func TestSubmitInquiry(t *testing.T) {
	env := newTestEnv(t)

	msg := submitInquiry(t, env)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.MessageNew, msg.Status)
	assert.NotNil(t, msg.Replies)
	assert.Empty(t, msg.Replies)

	_, err := time.Parse(time.RFC3339, msg.Date)
	assert.NoError(t, err)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reg.Messages.Submit(InquiryInput{Name: " ", Email: "", Message: ""})
	var se ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.Status)
}

func TestMarkRead(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	msg := submitInquiry(t, env)

	require.NoError(t, env.reg.Messages.MarkRead(token, msg.ID))

	msgs, err := env.reg.Messages.List(token, false)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageRead, msgs[0].Status)

	// Marking again is a no-op, and replied messages never regress to read.
	require.NoError(t, env.reg.Messages.MarkRead(token, msg.ID))
	_, err = env.reg.Messages.Reply(context.Background(), token, msg.ID, "Applications open in January.")
	require.NoError(t, err)
	require.NoError(t, env.reg.Messages.MarkRead(token, msg.ID))

	msgs, err = env.reg.Messages.List(token, false)
	require.NoError(t, err)
	assert.Equal(t, models.MessageReplied, msgs[0].Status)
}

func TestReplyDeliversMail(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	msg := submitInquiry(t, env)

	reply, err := env.reg.Messages.Reply(context.Background(), token, msg.ID, "Applications open in January.")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, reply.DeliveryStatus)
	assert.Equal(t, "Principal Administrator", reply.AdminName)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "niyonzima@example.com", env.mailer.sent[0].to)
	assert.Equal(t, "Admission enquiry", env.mailer.sent[0].subject)

	msgs, err := env.reg.Messages.List(token, false)
	require.NoError(t, err)
	require.Len(t, msgs[0].Replies, 1)
	assert.Equal(t, models.MessageReplied, msgs[0].Status)
}

func TestReplyPersistsWhenMailFails(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	msg := submitInquiry(t, env)

	env.mailer.fail = true
	reply, err := env.reg.Messages.Reply(context.Background(), token, msg.ID, "This will not send.")
	require.Error(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, models.DeliveryFailed, reply.DeliveryStatus)

	// The reply text is kept even though delivery failed.
	msgs, listErr := env.reg.Messages.List(token, false)
	require.NoError(t, listErr)
	require.Len(t, msgs[0].Replies, 1)
	assert.Equal(t, "This will not send.", msgs[0].Replies[0].Text)
	assert.Equal(t, models.MessageFailed, msgs[0].Status)
}

func TestReplyValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	msg := submitInquiry(t, env)

	_, err := env.reg.Messages.Reply(context.Background(), token, msg.ID, "  ")
	var se ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 400, se.Status)

	_, err = env.reg.Messages.Reply(context.Background(), token, "no-such-id", "hello")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 404, se.Status)
}

func TestMessageDeleteIsPermanent(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	msg := submitInquiry(t, env)
	ctx := context.Background()

	require.NoError(t, env.reg.Messages.Delete(ctx, token, msg.ID))

	msgs, err := env.reg.Messages.List(token, true)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// Inquiries have no trash: nothing to restore from.
	trash, err := env.reg.Messages.Trash(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, trash.([]models.ContactMessage))
}

func TestMessageStats(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	ctx := context.Background()

	first := submitInquiry(t, env)
	submitInquiry(t, env)
	submitInquiry(t, env)

	_, err := env.reg.Messages.Reply(ctx, token, first.ID, "Answered.")
	require.NoError(t, err)

	stats, err := env.reg.Messages.Stats(token)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.New)
	assert.Equal(t, 1, stats.Replied)
}

func TestMessagesRequireSession(t *testing.T) {
	env := newTestEnv(t)
	msg := submitInquiry(t, env)

	_, err := env.reg.Messages.List("", false)
	assert.Error(t, err)
	assert.Error(t, env.reg.Messages.MarkRead("bad-token", msg.ID))
	_, err = env.reg.Messages.Reply(context.Background(), "", msg.ID, "hi")
	assert.Error(t, err)
}
