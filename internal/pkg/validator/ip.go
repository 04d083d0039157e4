package validator

import (
	"net"
	"strings"
)

// ipv6LimitPrefix groups IPv6 clients by /64, the usual per-subscriber allocation
const ipv6LimitPrefix = 64

// IsValidIP 验证 IP 地址格式（支持 IPv4 和 IPv6）
func IsValidIP(ip string) bool {
	return ip != "" && net.ParseIP(NormalizeIP(ip)) != nil
}

// NormalizeIP 去掉 IPv6 zone（fe80::1%eth0 -> fe80::1）和首尾空白
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		return ip[:idx]
	}
	return ip
}

// ClientKey 返回用于限流的客户端标识
// IPv4 原样返回（IPv4-mapped 地址还原为 IPv4），IPv6 按 /64 网段聚合，无效地址归为 "unknown"
func ClientKey(ip string) string {
	parsed := net.ParseIP(NormalizeIP(ip))
	if parsed == nil {
		return "unknown"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.String()
	}
	mask := net.CIDRMask(ipv6LimitPrefix, 128)
	return (&net.IPNet{IP: parsed.Mask(mask), Mask: mask}).String()
}
