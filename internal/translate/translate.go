// Package translate 翻译导入的外文新闻标题。
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iabetor/newsdesk/internal/logger"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tmt "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tmt/v20180321"
)

// Translator 将文本翻译为 target 语言。
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// textTranslator 是 tmt.Client 中用到的方法，便于测试替换。
type textTranslator interface {
	TextTranslateWithContext(ctx context.Context, request *tmt.TextTranslateRequest) (*tmt.TextTranslateResponse, error)
}

// Tencent 腾讯云机器翻译。
type Tencent struct {
	client textTranslator
}

// NewTencent 创建腾讯云翻译客户端。
func NewTencent(secretID, secretKey, region string) (*Tencent, error) {
	if secretID == "" || secretKey == "" {
		return nil, errors.New("未配置腾讯云翻译凭证")
	}
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tmt.tencentcloudapi.com"

	client, err := tmt.NewClient(credential, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建翻译客户端失败: %w", err)
	}
	return &Tencent{client: client}, nil
}

// Translate 自动检测源语言并翻译。
func (t *Tencent) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("翻译文本不能为空")
	}

	request := tmt.NewTextTranslateRequest()
	request.SourceText = common.StringPtr(text)
	request.Source = common.StringPtr("auto")
	request.Target = common.StringPtr(target)
	request.ProjectId = common.Int64Ptr(0)

	response, err := t.client.TextTranslateWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("翻译请求失败: %w", err)
	}
	if response == nil || response.Response == nil || response.Response.TargetText == nil {
		return "", errors.New("翻译响应为空")
	}

	result := *response.Response.TargetText
	if response.Response.Source != nil {
		logger.Debugf("[translate] %s -> %s: %s", *response.Response.Source, target, result)
	}
	return result, nil
}
