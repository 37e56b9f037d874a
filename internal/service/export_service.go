package service

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/repository/specification"
	"haley-companion-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	exportTimestampLayout = "1/2/2006, 3:04:05 PM"
	exportSeparator       = "---\n\n"
)

type IExportService interface {
	// Export renders the user's most recent messages, up to the configured
	// number, oldest first, as "json" (the default) or "txt". The format must
	// match exactly.
	Export(ctx context.Context, userId uuid.UUID, format string) (*dto.ExportFile, error)
}

type exportService struct {
	uowFactory  unitofwork.RepositoryFactory
	clock       clock.Clock
	maxMessages int
}

func NewExportService(uowFactory unitofwork.RepositoryFactory, clk clock.Clock, maxMessages int) IExportService {
	return &exportService{
		uowFactory:  uowFactory,
		clock:       clk,
		maxMessages: maxMessages,
	}
}

func (s *exportService) Export(ctx context.Context, userId uuid.UUID, format string) (*dto.ExportFile, error) {
	if format == "" {
		format = dto.ExportFormatJSON
	}
	if format != dto.ExportFormatJSON && format != dto.ExportFormatTXT {
		return nil, apperror.Validation("Invalid format. Use ?format=json or ?format=txt")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.NewestFirst{},
		specification.Pagination{Limit: s.maxMessages},
	)
	if err != nil {
		return nil, apperror.Storage("export messages", err)
	}
	slices.Reverse(messages)

	filename := fmt.Sprintf("haley-messages-%d.%s", s.clock.Now().UnixMilli(), format)

	if format == dto.ExportFormatTXT {
		return &dto.ExportFile{
			Filename:    filename,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(RenderTranscript(messages)),
			Count:       len(messages),
		}, nil
	}

	body, err := json.MarshalIndent(dto.NewMessageResponses(messages), "", "  ")
	if err != nil {
		return nil, apperror.Storage("encode export", err)
	}
	return &dto.ExportFile{
		Filename:    filename,
		ContentType: "application/json",
		Body:        body,
		Count:       len(messages),
	}, nil
}

// RenderTranscript writes one "[time] ROLE:\ncontent\n\n" block per message,
// blocks separated by "---\n\n". Times are shown in UTC.
func RenderTranscript(messages []*entity.Message) string {
	blocks := make([]string, len(messages))
	for i, m := range messages {
		blocks[i] = fmt.Sprintf("[%s] %s:\n%s\n\n",
			m.CreatedAt.UTC().Format(exportTimestampLayout),
			strings.ToUpper(string(m.Role)),
			m.Content,
		)
	}
	return strings.Join(blocks, exportSeparator)
}
