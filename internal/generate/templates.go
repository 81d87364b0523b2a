package generate

import (
	"strconv"
	"strings"
	"text/template"
)

var tfFuncs = template.FuncMap{
	"quoteScript": quoteScript,
	"join":        joinInts,
	"lower":       strings.ToLower,
}

var providerTmpl = template.Must(template.New("provider.tf").Parse(`terraform {
  required_providers {
    {{ .Options.Provider }} = {
      source = "hashicorp/{{ .Options.Provider }}"
    }
  }
}

provider "{{ .Options.Provider }}" {
{{- if .Options.Project }}
  project = "{{ .Options.Project }}"
{{- end }}
  region  = "{{ .Options.Region }}"
  zone    = "{{ .Options.Zone }}"
}
`))

var networkTmpl = template.Must(template.New("network.tf").Parse(`resource "google_compute_network" "{{ .Options.NetworkName }}" {
  name                    = "{{ .Options.NetworkName }}"
  auto_create_subnetworks = false
}
{{ range .Subnets }}
resource "google_compute_subnetwork" "{{ .Name }}" {
  name          = "{{ .Name }}"
  ip_cidr_range = "{{ .CIDR }}"
  region        = "{{ $.Options.Region }}"
  network       = google_compute_network.{{ $.Options.NetworkName }}.id

  # observed: {{ .Observed }}
}
{{ end }}`))

var instancesTmpl = template.Must(template.New("instances.tf").Funcs(tfFuncs).Parse(`{{ range .Instances }}resource "google_compute_instance" "{{ .Name }}" {
  name         = "{{ .Name }}"
  machine_type = "{{ .MachineType }}"

  boot_disk {
    initialize_params {
      image = "debian-cloud/debian-12"
    }
  }

  network_interface {
    subnetwork = google_compute_subnetwork.{{ .SubnetName }}.id
  }

  metadata_startup_script = {{ quoteScript .Bootstrap }}

  labels = {
    role = "{{ lower (printf "%s" .Role) }}"
  }
}

{{ end }}`))

var firewallTmpl = template.Must(template.New("firewall.tf").Funcs(tfFuncs).Parse(`{{ range .Firewalls }}resource "google_compute_firewall" "{{ .Name }}" {
  name    = "{{ .Name }}"
  network = google_compute_network.{{ $.Options.NetworkName }}.name

  allow {
    protocol = "{{ .Protocol }}"
    ports    = [{{ join .Ports }}]
  }

  source_ranges = ["10.0.0.0/8"]
}

{{ end }}`))

func renderProvider(p *Plan) (string, error)  { return render(providerTmpl, p) }
func renderNetwork(p *Plan) (string, error)   { return render(networkTmpl, p) }
func renderInstances(p *Plan) (string, error) { return render(instancesTmpl, p) }
func renderFirewall(p *Plan) (string, error)  { return render(firewallTmpl, p) }

func render(tmpl *template.Template, p *Plan) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

// quoteScript renders a bootstrap script as a Terraform heredoc.
func quoteScript(script string) string {
	if script == "" {
		return `""`
	}
	return "<<-EOT\n" + script + "EOT"
}

func joinInts(ports []int) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Quote(strconv.Itoa(p))
	}
	return strings.Join(parts, ", ")
}
