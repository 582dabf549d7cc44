package service

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type importStudentRepository interface {
	ExistsByNameAndCourse(ctx context.Context, name, courseID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
}

type importCourseRepository interface {
	FindByName(ctx context.Context, name string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
}

// ImportService loads student rosters from CSV uploads.
type ImportService struct {
	students importStudentRepository
	courses  importCourseRepository
	logger   *zap.Logger
}

// NewImportService constructs the import service.
func NewImportService(students importStudentRepository, courses importCourseRepository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, courses: courses, logger: logger}
}

// ImportResult summarises an import run. Row errors never abort the run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// Import reads a CSV roster. The header must carry the nombre and curso
// columns; rows with missing mandatory fields or a duplicate (name, course)
// pair are skipped and reported. Unknown courses are created on the fly.
func (s *ImportService) Import(ctx context.Context, file io.Reader) (*ImportResult, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el archivo está vacío")
	}
	header := splitCSVLine(strings.TrimPrefix(scanner.Text(), "\ufeff"))
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["nombre"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el archivo debe incluir las columnas nombre y curso")
	}
	if _, ok := columns["curso"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "el archivo debe incluir las columnas nombre y curso")
	}

	result := &ImportResult{Errors: []string{}}
	courseCache := make(map[string]string)
	line := 1
	for scanner.Scan() {
		line++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields := splitCSVLine(raw)

		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}

		name := get("nombre")
		courseName := get("curso")
		if name == "" || courseName == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: nombre y curso son obligatorios", line))
			continue
		}

		courseID, err := s.resolveCourse(ctx, courseName, courseCache)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: no se pudo resolver el curso %q", line, courseName))
			continue
		}

		exists, err := s.students.ExistsByNameAndCourse(ctx, name, courseID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: error verificando duplicados", line))
			continue
		}
		if exists {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %s ya existe en el curso %s", line, name, courseName))
			continue
		}

		student := &models.Student{
			Name:          name,
			CourseID:      courseID,
			Phone:         optionalField(get("telefono")),
			Email:         optionalField(get("correo")),
			GuardianName:  optionalField(get("nombre_acudiente")),
			GuardianPhone: optionalField(get("telefono_acudiente")),
			Address:       optionalField(get("direccion")),
			BloodType:     optionalField(get("tipo_sangre")),
		}
		if insurance := get("seguro_estudiantil"); insurance != "" {
			value := parseInsurance(insurance)
			student.HasInsurance = &value
		}

		if err := s.students.Create(ctx, student); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fila %d: no se pudo guardar el estudiante", line))
			continue
		}
		result.Imported++
	}
	if err := scanner.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "no se pudo leer el archivo")
	}

	s.logger.Info("student import finished", zap.Int("imported", result.Imported), zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *ImportService) resolveCourse(ctx context.Context, name string, cache map[string]string) (string, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	course, err := s.courses.FindByName(ctx, name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		course = &models.Course{Name: name}
		if err := s.courses.Create(ctx, course); err != nil {
			return "", err
		}
	}
	cache[key] = course.ID
	return course.ID, nil
}

func optionalField(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func parseInsurance(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "si", "sí", "yes":
		return true
	}
	return false
}

// splitCSVLine splits one CSV line honouring double-quoted fields with
// embedded commas and doubled quotes.
func splitCSVLine(line string) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}
