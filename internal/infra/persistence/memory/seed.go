package memory

import (
	"github.com/paulmach/orb"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
)

// Seed is initial content for a Store.
type Seed struct {
	Users      []entity.User
	Ports      []entity.Port
	Categories []entity.Category
	Goods      []entity.Good
	Orders     []entity.Order
	Chats      []entity.Chat
	Messages   []entity.Message
}

// Load adds the seed to the store, replacing entries with equal ids.
func (s *Store) Load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range seed.Users {
		s.users[u.ID] = *u.Clone()
	}
	s.ports = append(s.ports, seed.Ports...)
	s.categories = append(s.categories, seed.Categories...)
	for _, g := range seed.Goods {
		s.goods[g.ID] = *g.Clone()
	}
	for _, o := range seed.Orders {
		s.orders[o.ID] = o
	}
	for _, c := range seed.Chats {
		s.chats[c.ID] = c.Clone()
	}
	for _, m := range seed.Messages {
		s.messages[m.ChatID] = append(s.messages[m.ChatID], m)
	}
}

// RegisterAccount adds an email/password account.
func (s *Store) RegisterAccount(uid, email, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	s.accounts[email] = &account{uid: uid, email: email, passwordHash: hash}

	return nil
}

// RegisterGoogleIdentity makes token a valid Google ID token for identity.
func (s *Store) RegisterGoogleIdentity(token string, identity service.AuthIdentity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleIdentities[token] = identity
}

// DefaultSeed is the reference data of development mode.
func DefaultSeed() Seed {
	return Seed{
		Ports: []entity.Port{
			{ID: "NLRTM", Title: "Rotterdam", Country: "Netherlands", Location: orb.Point{4.47917, 51.9225}},
			{ID: "DEHAM", Title: "Hamburg", Country: "Germany", Location: orb.Point{9.993682, 53.551086}},
			{ID: "BEANR", Title: "Antwerp", Country: "Belgium", Location: orb.Point{4.402771, 51.260197}},
			{ID: "SGSIN", Title: "Singapore", Country: "Singapore", Location: orb.Point{103.819836, 1.352083}},
			{ID: "UAODS", Title: "Odesa", Country: "Ukraine", Location: orb.Point{30.7233, 46.4825}},
		},
		Categories: []entity.Category{
			{ID: "provisions", Title: "Provisions", Description: "Food and fresh water"},
			{ID: "spare-parts", Title: "Spare parts", Description: "Engine and deck spare parts"},
			{ID: "bunker", Title: "Bunker", Description: "Fuel and lubricants"},
			{ID: "safety", Title: "Safety equipment", Description: "Life-saving and fire-fighting gear"},
		},
	}
}
