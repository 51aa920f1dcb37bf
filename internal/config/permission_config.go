package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type RolePermission struct {
	Role        string   `yaml:"role"`
	Permissions []string `yaml:"permissions"`
}

type PermissionConfig struct {
	RolePermissions []RolePermission `yaml:"role_permissions"`
}

// LoadPermissionConfig 讀取role->permission快照設定
// access token簽發時會把該role的permission清單整份放進claims
func LoadPermissionConfig(path string) (*PermissionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &PermissionConfig{}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// PermissionsForRole 取得指定role的permission快照, 未知role回傳空清單
func (c *PermissionConfig) PermissionsForRole(role string) []string {
	for _, rp := range c.RolePermissions {
		if rp.Role == role {
			return rp.Permissions
		}
	}
	return []string{}
}
