package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core/sharedlib"
)

type sharedLibRepository struct {
	db *sqlx.DB
}

var _ sharedlib.Repository = (*sharedLibRepository)(nil)

func NewSharedLibRepository(db *sqlx.DB) sharedlib.Repository {
	return &sharedLibRepository{db: db}
}

type courseFileRow struct {
	ID       string `db:"id"`
	CourseID string `db:"course_id"`
	Title    string `db:"title"`
	FileType string `db:"file_type"`
	fileCols
	UploadedAt time.Time `db:"uploaded_at"`
}

func (r courseFileRow) model() sharedlib.CourseFile {
	return sharedlib.CourseFile{
		ID:         r.ID,
		CourseID:   r.CourseID,
		Title:      r.Title,
		FileType:   r.FileType,
		File:       r.attachment(),
		UploadedAt: r.UploadedAt,
	}
}

func (repo *sharedLibRepository) CreateCourseCode(ctx context.Context, cc sharedlib.CourseCode) (sharedlib.CourseCode, error) {
	cc.ID = uuid.NewString()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course_code (id, code) VALUES ($1, $2)`, cc.ID, cc.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return sharedlib.CourseCode{}, sharedlib.ErrCodeExists
		}
		return sharedlib.CourseCode{}, errors.Wrap(err, "creating course code")
	}
	return cc, nil
}

func (repo *sharedLibRepository) QueryAllCourseCodes(ctx context.Context) ([]sharedlib.CourseCode, error) {
	codes := make([]sharedlib.CourseCode, 0)
	err := repo.db.SelectContext(ctx, &codes, `SELECT * FROM course_code ORDER BY code`)
	if err != nil {
		return nil, errors.Wrap(err, "querying course codes")
	}
	return codes, nil
}

func (repo *sharedLibRepository) DeleteCourseCodeByName(ctx context.Context, code string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course_code WHERE lower(code) = lower($1)`, code)
	if err != nil {
		return errors.Wrap(err, "deleting course code")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sharedlib.ErrCodeNotFound
	}
	return nil
}

func (repo *sharedLibRepository) CreateCourse(ctx context.Context, codeName string, course sharedlib.Course) (sharedlib.Course, error) {
	course.ID = uuid.NewString()
	// the code check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO course (id, code_id, name)
		 SELECT $1, cc.id, $2 FROM course_code cc WHERE lower(cc.code) = lower($3)
		 RETURNING code_id`,
		course.ID, course.Name, codeName,
	).Scan(&course.CodeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return sharedlib.Course{}, sharedlib.ErrCodeNotFound
		}
		if isUniqueViolation(err) {
			return sharedlib.Course{}, sharedlib.ErrCourseExists
		}
		return sharedlib.Course{}, errors.Wrap(err, "creating course")
	}
	return course, nil
}

func (repo *sharedLibRepository) QueryCoursesByCode(ctx context.Context, codeID string) ([]sharedlib.Course, error) {
	courses := make([]sharedlib.Course, 0)
	err := repo.db.SelectContext(ctx, &courses,
		`SELECT * FROM course WHERE code_id = $1 ORDER BY name`, codeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *sharedLibRepository) DeleteCourseByName(ctx context.Context, codeName, courseName string) error {
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM course c USING course_code cc
		 WHERE c.code_id = cc.id AND lower(cc.code) = lower($1) AND lower(c.name) = lower($2)`,
		codeName, courseName)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// tell an unresolved code apart from a missing course
		var exists bool
		err = repo.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM course_code WHERE lower(code) = lower($1))`, codeName)
		if err != nil {
			return errors.Wrap(err, "checking course code")
		}
		if !exists {
			return sharedlib.ErrCodeNotFound
		}
		return sharedlib.ErrCourseNotFound
	}
	return nil
}

func (repo *sharedLibRepository) CreateCourseFile(ctx context.Context, cf sharedlib.CourseFile) (sharedlib.CourseFile, error) {
	cf.ID = uuid.NewString()
	file := newFileCols(cf.File)
	// the course check rides within the write
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO course_file (id, course_id, title, file_type, file_url, file_public_id, file_content_type, uploaded_at)
		 SELECT $1, c.id, $2, $3, $4, $5, $6, $7 FROM course c WHERE c.id = $8
		 RETURNING course_id`,
		cf.ID, cf.Title, cf.FileType, file.URL, file.PublicID, file.ContentType, cf.UploadedAt, cf.CourseID,
	).Scan(&cf.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return sharedlib.CourseFile{}, sharedlib.ErrCourseNotFound
		}
		return sharedlib.CourseFile{}, errors.Wrap(err, "creating course file")
	}
	return cf, nil
}

func (repo *sharedLibRepository) QueryCourseFiles(ctx context.Context, courseID string) ([]sharedlib.CourseFile, error) {
	rows := make([]courseFileRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM course_file WHERE course_id = $1 ORDER BY uploaded_at`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course files")
	}

	files := make([]sharedlib.CourseFile, 0, len(rows))
	for _, r := range rows {
		files = append(files, r.model())
	}
	return files, nil
}

func (repo *sharedLibRepository) GetCourseFileByTitle(ctx context.Context, courseID, title string) (sharedlib.CourseFile, error) {
	var r courseFileRow
	err := repo.db.GetContext(ctx, &r,
		`SELECT * FROM course_file WHERE course_id = $1 AND lower(title) = lower($2)`, courseID, title)
	if err != nil {
		if err == sql.ErrNoRows {
			return sharedlib.CourseFile{}, sharedlib.ErrFileNotFound
		}
		return sharedlib.CourseFile{}, errors.Wrap(err, "getting course file")
	}
	return r.model(), nil
}

func (repo *sharedLibRepository) DeleteCourseFileByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course_file WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course file")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sharedlib.ErrFileNotFound
	}
	return nil
}
