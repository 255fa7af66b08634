package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/adapt/core/sharedlib"
)

type sharedLibRepository struct {
	db *sharedLibTables
}

var _ sharedlib.Repository = (*sharedLibRepository)(nil)

func NewSharedLibRepository(db *DB) sharedlib.Repository {
	return &sharedLibRepository{db: db.sharedLib}
}

// name matching in this domain is case-insensitive

func (repo *sharedLibRepository) getCodeByName(code string) (*sharedlib.CourseCode, bool) {
	for _, cc := range repo.db.codes {
		if strings.EqualFold(cc.Code, code) {
			return cc, true
		}
	}
	return nil, false
}

func (repo *sharedLibRepository) getCourseByName(codeID, name string) (*sharedlib.Course, bool) {
	for _, c := range repo.db.courses {
		if c.CodeID == codeID && strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

func (repo *sharedLibRepository) CreateCourseCode(_ context.Context, cc sharedlib.CourseCode) (sharedlib.CourseCode, error) {
	// the uniqueness check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.getCodeByName(cc.Code); ok {
		return sharedlib.CourseCode{}, sharedlib.ErrCodeExists
	}
	cc.ID = uuid.NewString()
	repo.db.codes[cc.ID] = &cc
	return cc, nil
}

func (repo *sharedLibRepository) QueryAllCourseCodes(_ context.Context) ([]sharedlib.CourseCode, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	codes := make([]sharedlib.CourseCode, 0, len(repo.db.codes))
	for _, cc := range repo.db.codes {
		codes = append(codes, *cc)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].Code < codes[j].Code })
	return codes, nil
}

func (repo *sharedLibRepository) DeleteCourseCodeByName(_ context.Context, code string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cc, ok := repo.getCodeByName(code)
	if !ok {
		return sharedlib.ErrCodeNotFound
	}
	delete(repo.db.codes, cc.ID)
	return nil
}

func (repo *sharedLibRepository) CreateCourse(_ context.Context, codeName string, course sharedlib.Course) (sharedlib.Course, error) {
	// the code check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cc, ok := repo.getCodeByName(codeName)
	if !ok {
		return sharedlib.Course{}, sharedlib.ErrCodeNotFound
	}
	if _, ok = repo.getCourseByName(cc.ID, course.Name); ok {
		return sharedlib.Course{}, sharedlib.ErrCourseExists
	}
	course.ID = uuid.NewString()
	course.CodeID = cc.ID
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *sharedLibRepository) QueryCoursesByCode(_ context.Context, codeID string) ([]sharedlib.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]sharedlib.Course, 0)
	for _, c := range repo.db.courses {
		if c.CodeID == codeID {
			courses = append(courses, *c)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *sharedLibRepository) DeleteCourseByName(_ context.Context, codeName, courseName string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cc, ok := repo.getCodeByName(codeName)
	if !ok {
		return sharedlib.ErrCodeNotFound
	}
	course, ok := repo.getCourseByName(cc.ID, courseName)
	if !ok {
		return sharedlib.ErrCourseNotFound
	}
	delete(repo.db.courses, course.ID)
	return nil
}

func (repo *sharedLibRepository) CreateCourseFile(_ context.Context, cf sharedlib.CourseFile) (sharedlib.CourseFile, error) {
	// the course check and the insert share the same critical section
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[cf.CourseID]; !ok {
		return sharedlib.CourseFile{}, sharedlib.ErrCourseNotFound
	}
	cf.ID = uuid.NewString()
	repo.db.files[cf.ID] = &cf
	return cf, nil
}

func (repo *sharedLibRepository) QueryCourseFiles(_ context.Context, courseID string) ([]sharedlib.CourseFile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	files := make([]sharedlib.CourseFile, 0)
	for _, cf := range repo.db.files {
		if cf.CourseID == courseID {
			files = append(files, *cf)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].UploadedAt.Before(files[j].UploadedAt) })
	return files, nil
}

func (repo *sharedLibRepository) GetCourseFileByTitle(_ context.Context, courseID, title string) (sharedlib.CourseFile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cf := range repo.db.files {
		if cf.CourseID == courseID && strings.EqualFold(cf.Title, title) {
			return *cf, nil
		}
	}
	return sharedlib.CourseFile{}, sharedlib.ErrFileNotFound
}

func (repo *sharedLibRepository) DeleteCourseFileByID(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.files[id]; !ok {
		return sharedlib.ErrFileNotFound
	}
	delete(repo.db.files, id)
	return nil
}
