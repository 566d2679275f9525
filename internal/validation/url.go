// Package validation checks user input before it is sent to the API.
//
// Base URL overrides may point at localhost or a private proxy, so only
// cloud metadata endpoints are refused there; they would receive signed
// requests carrying the access token.
package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateBaseURL checks a --base-url / TL_BASE_URL override. It must be an
// http or https URL with a host and no query, fragment or credentials.
func ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("invalid base URL scheme: must be http or https, got %q", parsedURL.Scheme)
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return fmt.Errorf("invalid base URL %q: must contain a hostname", rawURL)
	}
	if parsedURL.User != nil {
		return fmt.Errorf("invalid base URL: must not contain credentials")
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("invalid base URL: must not contain a query or fragment")
	}
	if isCloudMetadata(hostname) {
		return fmt.Errorf("cloud metadata endpoints are not allowed")
	}
	return nil
}

// isCloudMetadata checks for cloud provider metadata endpoints
func isCloudMetadata(hostname string) bool {
	lowercase := strings.ToLower(strings.TrimSuffix(hostname, "."))
	metadataHosts := []string{
		"169.254.169.254",          // AWS, GCP, Azure, OpenStack
		"metadata.google.internal", // GCP
		"metadata",                 // GCP short form
		"fd00:ec2::254",            // AWS IPv6
		"100.100.100.200",          // Alibaba Cloud
	}
	for _, host := range metadataHosts {
		if lowercase == host {
			return true
		}
	}
	if ip := net.ParseIP(lowercase); ip != nil {
		return ip.Equal(net.ParseIP("169.254.169.254")) || ip.Equal(net.ParseIP("fd00:ec2::254"))
	}
	return false
}
