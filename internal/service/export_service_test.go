package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sgescolar/secretaria-api/internal/models"
	appErrors "github.com/sgescolar/secretaria-api/pkg/errors"
)

type pagedStudentLister struct {
	students []models.Student
	calls    int
}

func (p *pagedStudentLister) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	p.calls++
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(p.students) {
		return nil, len(p.students), nil
	}
	end := start + filter.PageSize
	if end > len(p.students) {
		end = len(p.students)
	}
	return p.students[start:end], len(p.students), nil
}

func rosterStudents(n int) []models.Student {
	out := make([]models.Student, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Student{
			ID:        fmt.Sprintf("stu%d", i),
			Name:      fmt.Sprintf("Aluno %03d", i),
			CPF:       fmt.Sprintf("%011d", i),
			BirthDate: time.Date(2005, time.March, 10, 0, 0, 0, 0, time.UTC),
			Status:    models.StudentStatusActive,
		})
	}
	return out
}

func TestExportServiceStudentRosterCSV(t *testing.T) {
	lister := &pagedStudentLister{students: rosterStudents(3)}
	svc := NewExportService(lister, nil, nil, zap.NewNop())

	result, err := svc.StudentRoster(context.Background(), models.StudentFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Contains(t, result.Filename, "alunos-")
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Nome,CPF,Nascimento,Telefone,Email,Situacao", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Aluno 000")
	assert.Contains(t, lines[1], "10/03/2005")
}

func TestExportServiceStudentRosterPaginates(t *testing.T) {
	lister := &pagedStudentLister{students: rosterStudents(250)}
	svc := NewExportService(lister, nil, nil, zap.NewNop())

	result, err := svc.StudentRoster(context.Background(), models.StudentFilter{}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 3, lister.calls)

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	assert.Len(t, lines, 251)
}

func TestExportServiceStudentRosterPDF(t *testing.T) {
	lister := &pagedStudentLister{students: rosterStudents(2)}
	svc := NewExportService(lister, nil, nil, zap.NewNop())

	result, err := svc.StudentRoster(context.Background(), models.StudentFilter{}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(result.Payload, []byte("%PDF")))
}

func TestExportServiceStudentRosterUnknownFormat(t *testing.T) {
	lister := &pagedStudentLister{students: rosterStudents(1)}
	svc := NewExportService(lister, nil, nil, zap.NewNop())

	_, err := svc.StudentRoster(context.Background(), models.StudentFilter{}, ExportFormat("xlsx"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
