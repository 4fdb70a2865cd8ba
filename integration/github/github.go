package github

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/k0sproject/version"
)

const timeOut = time.Second * 10

// Release describes a github release
type Release struct {
	URL        string `json:"html_url"`
	TagName    string `json:"tag_name"`
	PreRelease bool   `json:"prerelease"`
}

// LatestRelease returns the semantically sorted latest release of a repo
// from the github releases API. Set preok true to allow returning
// pre-release versions.
func LatestRelease(repo string, preok bool) (Release, error) {
	var releases []Release
	if err := unmarshalURLBody(fmt.Sprintf("https://api.github.com/repos/%s/releases?per_page=20&page=1", repo), &releases); err != nil {
		return Release{}, err
	}

	var versions version.Collection
	for _, r := range releases {
		if r.PreRelease && !preok {
			continue
		}
		if v, err := version.NewVersion(r.TagName); err == nil {
			versions = append(versions, v)
		}
	}

	if len(versions) == 0 {
		return Release{}, fmt.Errorf("no releases found for %s", repo)
	}

	sort.Sort(versions)
	latest := versions[len(versions)-1].String()

	for _, r := range releases {
		if strings.TrimPrefix(r.TagName, "v") == strings.TrimPrefix(latest, "v") {
			return r, nil
		}
	}

	return Release{}, fmt.Errorf("failed to get the latest version information")
}

func unmarshalURLBody(url string, o interface{}) error {
	client := &http.Client{
		Timeout: timeOut,
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}

	if resp.Body == nil {
		return fmt.Errorf("nil body")
	}

	if resp.StatusCode != 200 {
		return fmt.Errorf("backend returned http %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := resp.Body.Close(); err != nil {
		return err
	}

	return json.Unmarshal(body, o)
}
