package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CCamarillo18/gestorasistencia2026/internal/models"
	appErrors "github.com/CCamarillo18/gestorasistencia2026/pkg/errors"
)

type importStudentsStub struct {
	existing map[string]bool
	created  []models.Student
}

func (s *importStudentsStub) ExistsByNameAndCourse(ctx context.Context, name, courseID string) (bool, error) {
	return s.existing[strings.ToLower(name)+"|"+courseID], nil
}

func (s *importStudentsStub) Create(ctx context.Context, student *models.Student) error {
	s.created = append(s.created, *student)
	return nil
}

type importCoursesStub struct {
	byName  map[string]*models.Course
	created []models.Course
}

func (s *importCoursesStub) FindByName(ctx context.Context, name string) (*models.Course, error) {
	if course, ok := s.byName[strings.ToLower(name)]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

func (s *importCoursesStub) Create(ctx context.Context, course *models.Course) error {
	course.ID = "c-" + course.Name
	s.created = append(s.created, *course)
	if s.byName == nil {
		s.byName = map[string]*models.Course{}
	}
	s.byName[strings.ToLower(course.Name)] = course
	return nil
}

func importFixture() (*ImportService, *importStudentsStub, *importCoursesStub) {
	students := &importStudentsStub{existing: map[string]bool{}}
	courses := &importCoursesStub{byName: map[string]*models.Course{
		"6a": {ID: "c1", Name: "6A"},
	}}
	return NewImportService(students, courses, zap.NewNop()), students, courses
}

func TestImportCreatesStudentsWithOptionalColumns(t *testing.T) {
	svc, students, _ := importFixture()

	csv := "nombre,curso,telefono,correo,seguro_estudiantil,tipo_sangre\n" +
		"Carlos Pérez,6A,3001234567,carlos@example.com,sí,O+\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Empty(t, result.Errors)

	require.Len(t, students.created, 1)
	student := students.created[0]
	assert.Equal(t, "Carlos Pérez", student.Name)
	assert.Equal(t, "c1", student.CourseID)
	require.NotNil(t, student.Phone)
	assert.Equal(t, "3001234567", *student.Phone)
	require.NotNil(t, student.HasInsurance)
	assert.True(t, *student.HasInsurance)
	require.NotNil(t, student.BloodType)
	assert.Equal(t, "O+", *student.BloodType)
}

func TestImportSkipsAndReportsDuplicates(t *testing.T) {
	svc, students, _ := importFixture()
	students.existing["carlos pérez|c1"] = true

	csv := "nombre,curso\nCarlos Pérez,6A\nLaura Díaz,6A\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Carlos Pérez")
	require.Len(t, students.created, 1)
	assert.Equal(t, "Laura Díaz", students.created[0].Name)
}

func TestImportAutoCreatesUnknownCourse(t *testing.T) {
	svc, students, courses := importFixture()

	csv := "nombre,curso\nPedro Ruiz,7B\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, courses.created, 1)
	assert.Equal(t, "7B", courses.created[0].Name)
	require.Len(t, students.created, 1)
	assert.Equal(t, "c-7B", students.created[0].CourseID)
}

func TestImportRejectsMissingMandatoryHeader(t *testing.T) {
	svc, _, _ := importFixture()

	_, err := svc.Import(context.Background(), strings.NewReader("nombre,telefono\nCarlos,300\n"))
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestImportReportsRowsMissingMandatoryFields(t *testing.T) {
	svc, students, _ := importFixture()

	csv := "nombre,curso\n,6A\nLaura Díaz,\nPedro Ruiz,6A\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, result.Errors, 2)
	require.Len(t, students.created, 1)
}

func TestImportHandlesQuotedFieldsWithCommas(t *testing.T) {
	svc, students, _ := importFixture()

	csv := "nombre,curso,direccion\n\"Pérez, Carlos\",6A,\"Calle 1 #2-3, Apto 4\"\n"
	result, err := svc.Import(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, students.created, 1)
	assert.Equal(t, "Pérez, Carlos", students.created[0].Name)
	require.NotNil(t, students.created[0].Address)
	assert.Equal(t, "Calle 1 #2-3, Apto 4", *students.created[0].Address)
}
