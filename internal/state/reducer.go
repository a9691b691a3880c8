package state

import (
	"slices"

	"harbor/internal/domain/entity"
)

// Reduce applies a to s and returns the next state tree. It is pure: s is
// never modified and equal inputs always give equal outputs.
func Reduce(s State, a Action) State {
	if _, ok := a.(SignOutSuccess); ok {
		return State{}
	}

	return State{
		UserAuth: reduceUserAuth(s.UserAuth, a),
		Profile:  reduceProfile(s.Profile, a),
		Catalog:  reduceCatalog(s.Catalog, a),
		Orders:   reduceOrders(s.Orders, a),
		Chat:     reduceChat(s.Chat, a),
		Ports:    reducePorts(s.Ports, a),
	}
}

func reduceUserAuth(s UserAuthState, a Action) UserAuthState {
	switch a := a.(type) {
	case SignInRequest, SignUpRequest, GoogleSignInRequest, RestoreSessionRequest, SignOutRequest:
		s.Async = requested()
	case SignInSuccess:
		return signedIn(a.User)
	case SignUpSuccess:
		return signedIn(a.User)
	case RestoreSessionSuccess:
		return signedIn(a.User)
	case GoogleSignInSuccess:
		if a.Pending != nil {
			pending := *a.Pending

			return UserAuthState{Pending: &pending}
		}

		return signedIn(a.User)
	case SignInFailure:
		s.Async = failed(a)
	case SignUpFailure:
		s.Async = failed(a)
	case GoogleSignInFailure:
		s.Async = failed(a)
	case RestoreSessionFailure:
		s.Async = failed(a)
	case UpdateProfileSuccess:
		if s.User != nil && a.Profile != nil && s.User.ID == a.Profile.ID {
			s.User = a.Profile.Clone()
		}
	}

	return s
}

func signedIn(user *entity.User) UserAuthState {
	return UserAuthState{User: user.Clone(), IsAuthenticated: user != nil}
}

func reduceProfile(s ProfileState, a Action) ProfileState {
	switch a := a.(type) {
	case FetchProfileRequest, UpdateProfileRequest, UpdateProfilePhotoRequest:
		s.Async = requested()
	case FetchProfileSuccess:
		return ProfileState{Profile: a.Profile.Clone()}
	case UpdateProfileSuccess:
		return ProfileState{Profile: a.Profile.Clone()}
	case SignInSuccess:
		return ProfileState{Profile: a.User.Clone()}
	case SignUpSuccess:
		return ProfileState{Profile: a.User.Clone()}
	case RestoreSessionSuccess:
		return ProfileState{Profile: a.User.Clone()}
	case GoogleSignInSuccess:
		if a.User != nil {
			return ProfileState{Profile: a.User.Clone()}
		}
	case UpdateProfilePhotoSuccess:
		s.Async = succeeded()
		if s.Profile != nil {
			profile := s.Profile.Clone()
			profile.ProfilePhoto = a.URL
			s.Profile = profile
		}
	case FetchProfileFailure:
		s.Async = failed(a)
	case UpdateProfileFailure:
		s.Async = failed(a)
	case UpdateProfilePhotoFailure:
		s.Async = failed(a)
	}

	return s
}

func reduceCatalog(s CatalogState, a Action) CatalogState {
	switch a := a.(type) {
	case FetchCategoriesRequest, AddGoodRequest, UpdateGoodRequest, DeleteGoodRequest:
		s.Async = requested()
	case FetchGoodsRequest:
		s.Async = requested()
		s.Query = a.Query
	case FetchCategoriesSuccess:
		s.Async = succeeded()
		s.Categories = slices.Clone(a.Categories)
	case FetchGoodsSuccess:
		s.Async = succeeded()
		s.Goods = cloneGoods(a.Goods)
	case AddGoodSuccess:
		s.Async = succeeded()
		s.Goods = upsertGood(s.Goods, a.Good)
	case UpdateGoodSuccess:
		s.Async = succeeded()
		s.Goods = upsertGood(s.Goods, a.Good)
	case DeleteGoodSuccess:
		s.Async = succeeded()
		s.Goods = slices.DeleteFunc(slices.Clone(s.Goods), func(g entity.Good) bool { return g.ID == a.GoodID })
	case FetchCategoriesFailure:
		s.Async = failed(a)
	case FetchGoodsFailure:
		s.Async = failed(a)
	case AddGoodFailure:
		s.Async = failed(a)
	case UpdateGoodFailure:
		s.Async = failed(a)
	case DeleteGoodFailure:
		s.Async = failed(a)
	}

	return s
}

func cloneGoods(goods []entity.Good) []entity.Good {
	out := make([]entity.Good, len(goods))
	for i := range goods {
		out[i] = *goods[i].Clone()
	}

	return out
}

func upsertGood(goods []entity.Good, good entity.Good) []entity.Good {
	out := slices.Clone(goods)
	stored := *good.Clone()

	for i := range out {
		if out[i].ID == good.ID {
			out[i] = stored

			return out
		}
	}

	return append(out, stored)
}

func reduceOrders(s OrdersState, a Action) OrdersState {
	switch a := a.(type) {
	case FetchOrdersRequest, UpdateOrderRequest:
		s.Async = requested()
	case FetchOrdersSuccess:
		s.Async = succeeded()
		s.Orders = slices.Clone(a.Orders)
	case UpdateOrderSuccess:
		s.Async = succeeded()
		s.Orders = slices.Clone(s.Orders)
		for i := range s.Orders {
			if s.Orders[i].ID == a.Order.ID {
				s.Orders[i] = a.Order

				return s
			}
		}
		s.Orders = append(s.Orders, a.Order)
	case FetchOrdersFailure:
		s.Async = failed(a)
	case UpdateOrderFailure:
		s.Async = failed(a)
	}

	return s
}

func reducePorts(s PortsState, a Action) PortsState {
	switch a := a.(type) {
	case FetchPortsRequest:
		s.Async = requested()
	case FetchPortsSuccess:
		s.Async = succeeded()
		s.Ports = slices.Clone(a.Ports)
	case FetchPortsFailure:
		s.Async = failed(a)
	}

	return s
}
