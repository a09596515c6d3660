package translate

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	tmt "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tmt/v20180321"
)

type stubClient struct {
	got  *tmt.TextTranslateRequest
	resp *tmt.TextTranslateResponse
	err  error
}

func (s *stubClient) TextTranslateWithContext(_ context.Context, req *tmt.TextTranslateRequest) (*tmt.TextTranslateResponse, error) {
	s.got = req
	return s.resp, s.err
}

func okResponse(text string) *tmt.TextTranslateResponse {
	resp := tmt.NewTextTranslateResponse()
	resp.Response = &tmt.TextTranslateResponseParams{
		TargetText: common.StringPtr(text),
		Source:     common.StringPtr("en"),
		Target:     common.StringPtr("ar"),
	}
	return resp
}

func TestTencentTranslate(t *testing.T) {
	stub := &stubClient{resp: okResponse("عاجل")}
	tr := &Tencent{client: stub}

	got, err := tr.Translate(context.Background(), "  Breaking  ", "ar")
	require.NoError(t, err)
	assert.Equal(t, "عاجل", got)

	require.NotNil(t, stub.got)
	assert.Equal(t, "Breaking", *stub.got.SourceText)
	assert.Equal(t, "auto", *stub.got.Source)
	assert.Equal(t, "ar", *stub.got.Target)
}

func TestTencentTranslateErrors(t *testing.T) {
	_, err := (&Tencent{client: &stubClient{}}).Translate(context.Background(), " ", "ar")
	assert.Error(t, err, "空文本应返回错误")

	_, err = (&Tencent{client: &stubClient{err: errors.New("boom")}}).Translate(context.Background(), "x", "ar")
	assert.ErrorContains(t, err, "boom")

	_, err = (&Tencent{client: &stubClient{resp: tmt.NewTextTranslateResponse()}}).Translate(context.Background(), "x", "ar")
	assert.ErrorContains(t, err, "翻译响应为空")
}

func TestNewTencentRequiresCredentials(t *testing.T) {
	_, err := NewTencent("", "", "ap-guangzhou")
	assert.Error(t, err)
}

func TestTencentLive(t *testing.T) {
	secretID := os.Getenv("NEWSDESK_TENCENT_SECRET_ID")
	secretKey := os.Getenv("NEWSDESK_TENCENT_SECRET_KEY")
	if secretID == "" || secretKey == "" {
		t.Skip("跳过翻译测试: 未设置 NEWSDESK_TENCENT_SECRET_ID 或 NEWSDESK_TENCENT_SECRET_KEY")
	}

	tr, err := NewTencent(secretID, secretKey, "ap-guangzhou")
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "Hello, world!", "ar")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
