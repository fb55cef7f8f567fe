package config

//
// server.go
// Copyright (C) 2025 Krzysztof Mowlik <kmwlk>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kmwlk/libsync/internal/aerr"
)

// ListenConf configure one address on server.
type ListenConf struct {
	Address string
	WebRoot string
	TLSKey  string
	TLSCert string
}

func (c *ListenConf) Validate() error {
	if c.Address == "" {
		return aerr.ErrValidation.WithUserMsg("listen address can't be empty")
	}

	if (c.TLSKey != "") != (c.TLSCert != "") {
		return aerr.ErrValidation.WithUserMsg("both tls key and cert must be defined")
	}

	return nil
}

func (c *ListenConf) TLSEnabled() bool {
	return c.TLSKey != ""
}

//-------------------------------------------------------------

// ServerConf configure web and mgmt servers.
type ServerConf struct {
	MainServer ListenConf
	MgmtServer ListenConf

	EnableMetrics  bool
	MgmtAccessList string

	mgmtAccessList *AccessList
}

func (c *ServerConf) Validate() error {
	if err := c.MainServer.Validate(); err != nil {
		return fmt.Errorf("validate main server configuration failed: %w", err)
	}

	if c.MgmtServer.Address != "" {
		if err := c.MgmtServer.Validate(); err != nil {
			return fmt.Errorf("validate mgmt server configuration failed: %w", err)
		}
	}

	if c.MgmtAccessList != "" {
		al, err := NewAccessList(c.MgmtAccessList)
		if err != nil {
			return fmt.Errorf("validate mgmt access list failed: %w", err)
		}

		c.mgmtAccessList = al

		log.Logger.Debug().Object("mgmtAccessList", al).Msg("mgmt access list configured")
	}

	return nil
}

func (c *ServerConf) SeparateMgmtEnabled() bool {
	return c.MgmtServer.Address != "" && c.MgmtServer.Address != c.MainServer.Address
}

func (c *ServerConf) MgmtEnabledOnMainServer() bool {
	return c.MgmtServer.Address != "" && c.MgmtServer.Address == c.MainServer.Address
}

// AuthMgmtRequest check request remote address is it allowed to access
// management endpoints.
func (c *ServerConf) AuthMgmtRequest(req *http.Request) bool {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)

	switch {
	case ip == nil:
		return false
	case ip.IsLoopback():
		return true
	case c.mgmtAccessList != nil:
		return c.mgmtAccessList.HasAccess(ip)
	default:
		return ip.IsPrivate()
	}
}

//-------------------------------------------------------------

// AppConf configure the synchronization engine itself.
type AppConf struct {
	// StorageDir is the directory downloaded content is stored in.
	StorageDir string
	// SyncIntervalMin is the period of the subscription polling loop in
	// minutes; 0 disables periodic polling.
	SyncIntervalMin int
	// MaxFeedPages bounds the next-page chain when walking remote feeds.
	MaxFeedPages int
}

func (c *AppConf) Validate() error {
	if c.StorageDir == "" {
		return aerr.ErrValidation.WithUserMsg("storage dir can't be empty")
	}

	if c.SyncIntervalMin < 0 {
		return aerr.ErrValidation.WithUserMsg("invalid sync interval")
	}

	if c.MaxFeedPages < 0 {
		return aerr.ErrValidation.WithUserMsg("invalid max feed pages")
	}

	return nil
}

//-------------------------------------------------------------

type AccessList struct {
	AllowedIPs  []net.IP
	AllowedNets []*net.IPNet
}

func NewAccessList(accesslist string) (*AccessList, error) {
	var (
		ips  []net.IP
		nets []*net.IPNet
	)

	for entry := range strings.SplitSeq(accesslist, ",") {
		entry = strings.TrimSpace(entry)

		if strings.Contains(entry, "/") {
			_, n, err := net.ParseCIDR(entry)
			if err != nil {
				return nil, aerr.ErrValidation.WithUserMsg(
					"invalid entry in access list: entry=%q error=%q", entry, err)
			}

			nets = append(nets, n)
		} else {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, aerr.ErrValidation.WithUserMsg("invalid entry in access list: entry=%q", entry)
			}

			ips = append(ips, ip)
		}
	}

	return &AccessList{
		AllowedIPs:  ips,
		AllowedNets: nets,
	}, nil
}

func (a *AccessList) HasAccess(ip net.IP) bool {
	for _, i := range a.AllowedIPs {
		if i.Equal(ip) {
			return true
		}
	}

	for _, n := range a.AllowedNets {
		if n.Contains(ip) {
			return true
		}
	}

	return false
}

func (a *AccessList) MarshalZerologObject(event *zerolog.Event) {
	event.Interface("allowed_ips", a.AllowedIPs).
		Interface("allowed_nets", a.AllowedNets)
}
