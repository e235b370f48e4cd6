package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/erp/invoicing/internal/infrastructure/logger"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig holds configuration for the API documentation endpoints
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // run authn before serving the docs
	AllowedIPs  []string // single IPs or CIDRs, empty allows everyone
}

// SwaggerProtection guards the documentation routes. Disabled docs answer 404,
// clients outside AllowedIPs get 403, and with RequireAuth the request must
// pass authn first.
func SwaggerProtection(cfg SwaggerConfig, authn gin.HandlerFunc) gin.HandlerFunc {
	allowed := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		requestID := c.GetString(logger.GinRequestIDKey)
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", requestID))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !allowed.contains(net.ParseIP(c.ClientIP())) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", requestID))
			return
		}
		if cfg.RequireAuth && authn != nil {
			authn(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

type allowList struct {
	ips  []net.IP
	nets []*net.IPNet
}

// parseAllowList skips entries that are neither an IP nor a CIDR
func parseAllowList(entries []string) allowList {
	var list allowList
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				list.nets = append(list.nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			list.ips = append(list.ips, ip)
		}
	}
	return list
}

func (l allowList) contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range l.ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range l.nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
