package boardstub

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken       = errors.New("Email already registered")
	errBadCredentials   = errors.New("Invalid credentials")
	errAdNotFound       = errors.New("Advertisement not found")
	errNotOwnerDelete   = errors.New("You can only delete your own advertisements")
	errNotOwnerView     = errors.New("Only the owner can view responders")
	errOwnAdvert        = errors.New("You cannot respond to your own advertisement")
	errAlreadyResponded = errors.New("You have already responded to this advertisement")
)

type user struct {
	domain.User
	passwordHash []byte
}

type advert struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	Price       float64
	CreatedAt   time.Time
}

// store is the in-memory state of the fake marketplace.
type store struct {
	mu         sync.Mutex
	users      []user
	byEmail    map[string]int64
	adverts    []advert
	responses  map[int64]map[int64]struct{} // advert id -> responder ids
	nextUser   int64
	nextAdvert int64
	cost       int
	now        func() time.Time
}

func newStore(cost int) *store {
	return &store{
		byEmail:    make(map[string]int64),
		responses:  make(map[int64]map[int64]struct{}),
		nextUser:   1,
		nextAdvert: 1,
		cost:       cost,
		now:        time.Now,
	}
}

func (s *store) register(name, email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return domain.User{}, errEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	u := user{User: domain.User{ID: s.nextUser, Name: name, Email: email}, passwordHash: hash}
	s.nextUser++
	s.users = append(s.users, u)
	s.byEmail[email] = u.ID
	return u.User, nil
}

func (s *store) authenticate(email, password string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, errBadCredentials
	}
	u := s.users[id-1]
	if err := bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)); err != nil {
		return domain.User{}, errBadCredentials
	}
	return u.User, nil
}

func (s *store) user(id int64) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.users) {
		return domain.User{}, false
	}
	return s.users[id-1].User, true
}

func (s *store) createAdvert(ownerID int64, title, description string, price float64) advert {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := advert{
		ID:          s.nextAdvert,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Price:       price,
		CreatedAt:   s.now(),
	}
	s.nextAdvert++
	s.adverts = append(s.adverts, a)
	return a
}

func (s *store) findLocked(id int64) int {
	for i, a := range s.adverts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *store) deleteAdvert(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return errAdNotFound
	}
	if s.adverts[i].OwnerID != userID {
		return errNotOwnerDelete
	}
	s.adverts = append(s.adverts[:i], s.adverts[i+1:]...)
	delete(s.responses, id)
	return nil
}

func (s *store) respond(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return errAdNotFound
	}
	if s.adverts[i].OwnerID == userID {
		return errOwnAdvert
	}
	set, ok := s.responses[id]
	if !ok {
		set = make(map[int64]struct{})
		s.responses[id] = set
	}
	if _, dup := set[userID]; dup {
		return errAlreadyResponded
	}
	set[userID] = struct{}{}
	return nil
}

func (s *store) responders(userID, id int64) ([]domain.Responder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(id)
	if i < 0 {
		return nil, errAdNotFound
	}
	if s.adverts[i].OwnerID != userID {
		return nil, errNotOwnerView
	}
	out := make([]domain.Responder, 0, len(s.responses[id]))
	for uid := range s.responses[id] {
		u := s.users[uid-1]
		out = append(out, domain.Responder{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// listings annotates every advert for viewer (0 = anonymous).
func (s *store) listings(viewer int64) []domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Listing, 0, len(s.adverts))
	for _, a := range s.adverts {
		l := s.toListingLocked(a)
		l.Mine = viewer != 0 && a.OwnerID == viewer
		_, responded := s.responses[a.ID][viewer]
		hasResponded := viewer != 0 && responded
		l.HasResponded = &hasResponded
		if l.Mine {
			count := len(s.responses[a.ID])
			l.ResponsesCount = &count
		}
		out = append(out, l)
	}
	return out
}

func (s *store) respondedBy(viewer int64) []domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Listing, 0)
	for _, a := range s.adverts {
		if _, ok := s.responses[a.ID][viewer]; !ok {
			continue
		}
		l := s.toListingLocked(a)
		yes := true
		l.HasResponded = &yes
		out = append(out, l)
	}
	return out
}

func (s *store) toListingLocked(a advert) domain.Listing {
	return domain.Listing{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Price:       a.Price,
		OwnerName:   s.users[a.OwnerID-1].Name,
		CreatedAt:   a.CreatedAt.Unix(),
	}
}
