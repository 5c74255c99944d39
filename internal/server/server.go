package server

// Server bundles the entity-specific HTTP servers. Only gifts exist today.
type Server struct {
	GiftServer
}

func NewServer(
	giftServer GiftServer,
) Server {
	return Server{
		GiftServer: giftServer,
	}
}
