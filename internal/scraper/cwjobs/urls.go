package cwjobs

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultBaseURL        = "https://www.cwjobs.co.uk/jobs/"
	DefaultJobPostBaseURL = "https://www.cwjobs.co.uk"
	DefaultURLTail        = "?page={page_number}&searchOrigin=jobad"

	pageNumberPlaceholder = "{page_number}"
)

// SearchPageURLs builds the result-page URLs for a job title, pages 1..pages.
// "DevOps Engineer" becomes base + "devops-engineer" + tail.
func SearchPageURLs(baseURL, urlTail, jobTitle string, pages int) []string {
	if pages <= 0 {
		return nil
	}
	slug := strings.ToLower(strings.Join(strings.Fields(jobTitle), "-"))
	template := baseURL + slug + urlTail

	urls := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		urls = append(urls, strings.ReplaceAll(template, pageNumberPlaceholder, strconv.Itoa(i)))
	}
	return urls
}

// ResolveJobURL makes href absolute against base and drops the query string
// and fragment. Result cards carry tracking parameters that would otherwise
// make one posting look like many. It returns "" for an unusable href.
func ResolveJobURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return ""
		}
		ref = b.ResolveReference(ref)
	}
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String()
}
