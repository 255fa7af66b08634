package inmemdb

import (
	"sync"

	"github.com/trezcool/adapt/core/lostfound"
	"github.com/trezcool/adapt/core/maildir"
	"github.com/trezcool/adapt/core/qna"
	"github.com/trezcool/adapt/core/sharedlib"
	"github.com/trezcool/adapt/core/user"
)

// DB is an in-memory database. Used in development and in tests.
type DB struct {
	user      *userTable
	qna       *qnaTables
	sharedLib *sharedLibTables
	mailDir   *mailDirTables
	lostFound *lostFoundTables
}

func NewDB() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
		qna: &qnaTables{
			categories: make(map[string]*qna.Category),
			questions:  make(map[string]*qna.Question),
			answers:    make(map[string]*qna.Answer),
		},
		sharedLib: &sharedLibTables{
			codes:   make(map[string]*sharedlib.CourseCode),
			courses: make(map[string]*sharedlib.Course),
			files:   make(map[string]*sharedlib.CourseFile),
		},
		mailDir: &mailDirTables{
			categories: make(map[string]*maildir.Category),
			emails:     make(map[string]*maildir.Email),
		},
		lostFound: &lostFoundTables{
			places:   make(map[string]*lostfound.Place),
			messages: make(map[string]*lostfound.Message),
			replies:  make(map[string]*lostfound.Reply),
		},
	}
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type qnaTables struct {
	mutex      sync.RWMutex
	categories map[string]*qna.Category
	questions  map[string]*qna.Question
	answers    map[string]*qna.Answer
}

type sharedLibTables struct {
	mutex   sync.RWMutex
	codes   map[string]*sharedlib.CourseCode
	courses map[string]*sharedlib.Course
	files   map[string]*sharedlib.CourseFile
}

type mailDirTables struct {
	mutex      sync.RWMutex
	categories map[string]*maildir.Category
	emails     map[string]*maildir.Email
}

type lostFoundTables struct {
	mutex    sync.RWMutex
	places   map[string]*lostfound.Place
	messages map[string]*lostfound.Message
	replies  map[string]*lostfound.Reply
}
