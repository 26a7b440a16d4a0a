package scan

import (
	"os/user"
	"strconv"
)

// Resolver translates numeric owner and group ids into names. The
// classifier falls back to the decimal id when resolution fails, so
// implementations only return names they actually know.
type Resolver interface {
	UserName(uid uint32) string
	GroupName(gid uint32) string
}

// userResolver resolves ids through os/user with a per-scan cache.
// Lookups hit NSS once per distinct id.
type userResolver struct {
	users  map[uint32]string
	groups map[uint32]string
}

// NewUserResolver returns a caching Resolver backed by os/user.
func NewUserResolver() Resolver {
	return &userResolver{
		users:  make(map[uint32]string),
		groups: make(map[uint32]string),
	}
}

func (r *userResolver) UserName(uid uint32) string {
	if name, ok := r.users[uid]; ok {
		return name
	}

	name := strconv.FormatUint(uint64(uid), 10)
	if u, err := user.LookupId(name); err == nil && u.Username != "" {
		name = u.Username
	}

	r.users[uid] = name

	return name
}

func (r *userResolver) GroupName(gid uint32) string {
	if name, ok := r.groups[gid]; ok {
		return name
	}

	name := strconv.FormatUint(uint64(gid), 10)
	if g, err := user.LookupGroupId(name); err == nil && g.Name != "" {
		name = g.Name
	}

	r.groups[gid] = name

	return name
}
