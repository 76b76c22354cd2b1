package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"DoneflowGo/config"
	"DoneflowGo/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// SummaryService 调用大模型为自动生成的日报补一句结语。
// 未配置API Key时为nil，调用方需要判空。
type SummaryService struct {
	model llms.Model
	wg    sync.WaitGroup
}

// NewSummaryService 创建结语生成服务
func NewSummaryService(apiKey, apiEndpoint string) (*SummaryService, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(apiEndpoint),
		openai.WithModel("deepseek/deepseek-v3"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Deepseek client: %w", err)
	}

	return &SummaryService{model: client}, nil
}

const remarkPrompt = `你是一位温和的效率教练。根据用户今天完成的任务清单，写一句不超过50字的中文总结或鼓励。
禁用markdown格式，不要列举任务，直接输出这一句话。`

// ClosingRemark 根据当天完成的任务生成一句结语。
// 调用失败不应影响日报生成，由调用方记录日志后跳过。
func (s *SummaryService) ClosingRemark(ctx context.Context, tasks []models.Task) (string, error) {
	if len(tasks) == 0 {
		return "", nil
	}

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	s.wg.Add(1)
	defer s.wg.Done()

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(remarkPrompt)},
		},
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart("今天完成的任务：" + strings.Join(titles, "；"))},
		},
	}

	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		config.Logger.Errorw("生成日报结语失败", "error", err, "taskCount", len(tasks))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Wait 等待进行中的生成完成，用于优雅关闭
func (s *SummaryService) Wait() {
	s.wg.Wait()
}
