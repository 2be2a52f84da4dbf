package model

// 認証済みの呼び出し元。AuthJWTが1回だけ作り、値でusecaseへ渡す。
type Principal struct {
	UserID int64
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}
