package license

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/edge-vault/licenses"
)

type LicenseResult struct {
	BSDLicenses []licenses.DepLicense `json:"bsd_licenses"`
}

func (r *LicenseResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[LICENSE]\n\n")
	buffer.WriteString(licenses.License)

	buffer.WriteString("\n[DEPENDENCY ATTRIBUTIONS]\n\n")

	for _, license := range r.BSDLicenses {
		version := "latest"
		if license.Version != nil {
			version = *license.Version
		}

		buffer.WriteString(fmt.Sprintf(
			"   Name: %s\nVersion: %s\n   Type: %s\n   Path: %s\n\n",
			license.Name,
			version,
			license.Type,
			license.Path,
		))
	}

	return buffer.String()
}
