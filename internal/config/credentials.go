package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// resolveCredentials fills api_user/password for instances that reference a
// profile section in the shared credentials file. Inline values win over the
// profile; the profile only fills fields that are empty. The file uses INI
// sections named after the profile:
//
//	[production]
//	api_user = administrator
//	password = s3cret
func resolveCredentials(cfg *Config) error {
	referenced := false
	for i := range cfg.Instances {
		if cfg.Instances[i].CredentialsProfile != "" {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil
	}

	if cfg.Collector.CredentialsFile == "" {
		return fmt.Errorf("collector.credentials_file is required when an instance sets credentials_profile")
	}

	f, err := ini.Load(cfg.Collector.CredentialsFile)
	if err != nil {
		return fmt.Errorf("failed to parse credentials file: %w", err)
	}

	for i := range cfg.Instances {
		inst := &cfg.Instances[i]
		if inst.CredentialsProfile == "" {
			continue
		}

		section, err := f.GetSection(inst.CredentialsProfile)
		if err != nil {
			return fmt.Errorf("credentials profile %q not found in %s", inst.CredentialsProfile, cfg.Collector.CredentialsFile)
		}

		if inst.APIUser == "" {
			inst.APIUser = section.Key("api_user").String()
		}
		if inst.Password == "" {
			inst.Password = section.Key("password").String()
		}
	}

	return nil
}
