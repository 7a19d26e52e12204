package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SaveTokenMessage]    = (*SaveTokenCommand)(nil)
	_ gocmd.Commander[RefreshTokenMessage] = (*RefreshTokenCommand)(nil)
	_ gocmd.Commander[RevokeTokenMessage]  = (*RevokeTokenCommand)(nil)
	_ gocmd.Commander[ReapTokensMessage]   = (*ReapTokensCommand)(nil)
	_ gocmd.Commander[SaveLocationMessage] = (*SaveLocationCommand)(nil)
	_ gocmd.Commander[DispatchMessage]     = (*DispatchCommand)(nil)
)
