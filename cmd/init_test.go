package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	v1beta1 "github.com/fedsetup/fedsetup/pkg/apis/fedsetup.dev/v1beta1"
)

func TestInitTemplate(t *testing.T) {
	cfg, err := initTemplate()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, yaml.NewEncoder(&buf).Encode(cfg))

	parsed := &v1beta1.Setup{}
	require.NoError(t, yaml.UnmarshalStrict(buf.Bytes(), parsed))
	require.NoError(t, parsed.Validate())

	require.Equal(t, "fedsetup", parsed.Metadata.Name)
	require.Equal(t, "jim", parsed.Spec.User)
	require.True(t, parsed.Spec.Packages.RPMFusion.FreeEnabled())
	require.True(t, parsed.Spec.Packages.RPMFusion.NonfreeEnabled())
	require.Equal(t, "/etc/ssh/moduli", parsed.Spec.System.Moduli.Path)
	require.Equal(t, "root:root", parsed.Spec.System.Files[0].Owner)
	require.True(t, parsed.Spec.Features.TLP)
}
