package state

import "harbor/internal/domain/entity"

// CurrentUserID returns the signed-in user's id, or "" when signed out.
func (s State) CurrentUserID() string {
	if s.UserAuth.User == nil {
		return ""
	}

	return s.UserAuth.User.ID
}

// SelectedChat returns the chat currently selected in the chat view.
func (s State) SelectedChat() (entity.Chat, bool) {
	return s.Chat.Find(s.Chat.SelectedChatID)
}

// Find returns the chat with the given id.
func (c ChatState) Find(chatID string) (entity.Chat, bool) {
	if chatID == "" {
		return entity.Chat{}, false
	}

	for _, chat := range c.Chats {
		if chat.ID == chatID {
			return chat, true
		}
	}

	return entity.Chat{}, false
}

// TotalUnread sums uid's unread counts over every chat.
func (c ChatState) TotalUnread(uid string) int {
	total := 0
	for _, chat := range c.Chats {
		total += chat.Unread(uid)
	}

	return total
}

// ActivePortID returns the port the catalog should browse: the last queried
// port, otherwise the profile's primary port.
func (s State) ActivePortID() string {
	if s.Catalog.Query.PortID != "" {
		return s.Catalog.Query.PortID
	}

	for _, user := range []*entity.User{s.Profile.Profile, s.UserAuth.User} {
		if user == nil {
			continue
		}
		if port, ok := user.PrimaryPort(); ok {
			return port.ID
		}
	}

	return ""
}

// FindGood returns the catalog good with the given id.
func (c CatalogState) FindGood(id string) (entity.Good, bool) {
	for _, good := range c.Goods {
		if good.ID == id {
			return good, true
		}
	}

	return entity.Good{}, false
}

// FindOrder returns the listed order with the given id.
func (o OrdersState) FindOrder(id string) (entity.Order, bool) {
	for _, order := range o.Orders {
		if order.ID == id {
			return order, true
		}
	}

	return entity.Order{}, false
}
