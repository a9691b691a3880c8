package firebase

import (
	"time"

	"github.com/paulmach/orb"
	"google.golang.org/genproto/googleapis/type/latlng"

	"harbor/internal/domain/entity"
)

type portDoc struct {
	ID       string         `firestore:"id"`
	Title    string         `firestore:"title"`
	Country  string         `firestore:"country"`
	Location *latlng.LatLng `firestore:"location"`
}

func portFromDoc(id string, d portDoc) entity.Port {
	p := entity.Port{ID: id, Title: d.Title, Country: d.Country}
	if d.ID != "" {
		p.ID = d.ID
	}
	if d.Location != nil {
		p.Location = orb.Point{d.Location.GetLongitude(), d.Location.GetLatitude()}
	}

	return p
}

func portToDoc(p entity.Port) portDoc {
	return portDoc{
		ID:       p.ID,
		Title:    p.Title,
		Country:  p.Country,
		Location: &latlng.LatLng{Latitude: p.Location.Lat(), Longitude: p.Location.Lon()},
	}
}

type userDoc struct {
	Email        string    `firestore:"email"`
	FirstName    string    `firestore:"firstName"`
	LastName     string    `firestore:"lastName"`
	Phone        string    `firestore:"phone"`
	VesselIMO    string    `firestore:"vesselIMO"`
	VesselMMSI   string    `firestore:"vesselMMSI"`
	Role         string    `firestore:"role"`
	ProfilePhoto string    `firestore:"profilePhoto"`
	Ports        []portDoc `firestore:"ports"`
	FCMTokens    []string  `firestore:"fcmTokens"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

func userFromDoc(id string, d userDoc) *entity.User {
	u := &entity.User{
		ID:           id,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		VesselIMO:    d.VesselIMO,
		VesselMMSI:   d.VesselMMSI,
		Role:         entity.Role(d.Role),
		ProfilePhoto: d.ProfilePhoto,
		FCMTokens:    d.FCMTokens,
		CreatedAt:    d.CreatedAt,
	}
	for _, p := range d.Ports {
		u.Ports = append(u.Ports, portFromDoc(p.ID, p))
	}

	return u
}

func userToDoc(u *entity.User) userDoc {
	d := userDoc{
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		VesselIMO:    u.VesselIMO,
		VesselMMSI:   u.VesselMMSI,
		Role:         string(u.Role),
		ProfilePhoto: u.ProfilePhoto,
		Ports:        portsToDocs(u.Ports),
		FCMTokens:    u.FCMTokens,
		CreatedAt:    u.CreatedAt,
	}
	if d.FCMTokens == nil {
		d.FCMTokens = []string{}
	}

	return d
}

func portsToDocs(ports []entity.Port) []portDoc {
	out := make([]portDoc, 0, len(ports))
	for _, p := range ports {
		out = append(out, portToDoc(p))
	}

	return out
}

type categoryDoc struct {
	Title       string `firestore:"title"`
	Description string `firestore:"description"`
}

type goodDoc struct {
	OwnerID            string            `firestore:"ownerId"`
	PortID             string            `firestore:"portId"`
	CategoryID         string            `firestore:"categoryId"`
	Title              string            `firestore:"title"`
	Description        string            `firestore:"description"`
	Price              float64           `firestore:"price"`
	Currency           string            `firestore:"currency"`
	Images             map[string]string `firestore:"images"`
	Available          bool              `firestore:"available"`
	CreateTimestampGMT time.Time         `firestore:"createTimestampGMT"`
}

func goodFromDoc(id string, d goodDoc) entity.Good {
	return entity.Good{
		ID:                 id,
		OwnerID:            d.OwnerID,
		PortID:             d.PortID,
		CategoryID:         d.CategoryID,
		Title:              d.Title,
		Description:        d.Description,
		Price:              d.Price,
		Currency:           d.Currency,
		Images:             d.Images,
		Available:          d.Available,
		CreateTimestampGMT: d.CreateTimestampGMT,
	}
}

func goodToDoc(g *entity.Good) goodDoc {
	images := g.Images
	if images == nil {
		images = map[string]string{}
	}

	return goodDoc{
		OwnerID:            g.OwnerID,
		PortID:             g.PortID,
		CategoryID:         g.CategoryID,
		Title:              g.Title,
		Description:        g.Description,
		Price:              g.Price,
		Currency:           g.Currency,
		Images:             images,
		Available:          g.Available,
		CreateTimestampGMT: g.CreateTimestampGMT,
	}
}

type orderDoc struct {
	OrderNumber        string    `firestore:"orderNumber"`
	Status             string    `firestore:"status"`
	Quantity           int       `firestore:"quantity"`
	PriceInOrder       float64   `firestore:"priceInOrder"`
	CurrencyInOrder    string    `firestore:"currencyInOrder"`
	BuyerID            string    `firestore:"buyerId"`
	SellerID           string    `firestore:"sellerId"`
	GoodID             string    `firestore:"goodId"`
	CreateTimestampGMT time.Time `firestore:"createTimestampGMT"`
	UpdateTimestampGMT time.Time `firestore:"updateTimestampGMT"`
}

func orderFromDoc(id string, d orderDoc) entity.Order {
	return entity.Order{
		ID:                 id,
		OrderNumber:        d.OrderNumber,
		Status:             entity.OrderStatus(d.Status),
		Quantity:           d.Quantity,
		PriceInOrder:       d.PriceInOrder,
		CurrencyInOrder:    d.CurrencyInOrder,
		BuyerID:            d.BuyerID,
		SellerID:           d.SellerID,
		GoodID:             d.GoodID,
		CreateTimestampGMT: d.CreateTimestampGMT,
		UpdateTimestampGMT: d.UpdateTimestampGMT,
	}
}

type chatMemberDoc struct {
	Name  string `firestore:"name"`
	Photo string `firestore:"photo"`
}

type chatDoc struct {
	Members       []string                 `firestore:"members"`
	MembersData   map[string]chatMemberDoc `firestore:"membersData"`
	UnreadCount   map[string]int           `firestore:"unreadCount"`
	LastMessage   string                   `firestore:"lastMessage"`
	LastMessageAt time.Time                `firestore:"lastMessageAt"`
	OrderID       string                   `firestore:"orderId,omitempty"`
}

func chatFromDoc(id string, d chatDoc) entity.Chat {
	c := entity.Chat{
		ID:            id,
		Members:       d.Members,
		MembersData:   make(map[string]entity.ChatMember, len(d.MembersData)),
		UnreadCount:   d.UnreadCount,
		LastMessage:   d.LastMessage,
		LastMessageAt: d.LastMessageAt,
		OrderID:       d.OrderID,
	}
	for uid, m := range d.MembersData {
		c.MembersData[uid] = entity.ChatMember{Name: m.Name, Photo: m.Photo}
	}
	if c.UnreadCount == nil {
		c.UnreadCount = map[string]int{}
	}

	return c
}

func chatToDoc(c *entity.Chat) chatDoc {
	d := chatDoc{
		Members:       c.Members,
		MembersData:   make(map[string]chatMemberDoc, len(c.MembersData)),
		UnreadCount:   make(map[string]int, len(c.Members)),
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
		OrderID:       c.OrderID,
	}
	for uid, m := range c.MembersData {
		d.MembersData[uid] = chatMemberDoc{Name: m.Name, Photo: m.Photo}
	}
	for _, uid := range c.Members {
		d.UnreadCount[uid] = c.UnreadCount[uid]
	}

	return d
}

type messageDoc struct {
	SenderID  string    `firestore:"senderId"`
	Text      string    `firestore:"text"`
	Timestamp time.Time `firestore:"timestamp"`
	Read      bool      `firestore:"read"`
}

func messageFromDoc(chatID, id string, d messageDoc) entity.Message {
	return entity.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  d.SenderID,
		Text:      d.Text,
		Timestamp: d.Timestamp,
		Read:      d.Read,
	}
}

func messageToDoc(m *entity.Message) messageDoc {
	return messageDoc{
		SenderID:  m.SenderID,
		Text:      m.Text,
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}
