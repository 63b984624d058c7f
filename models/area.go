// Package models defines the tables that flow through the referendum pipeline
// and the configuration that drives it.
package models

// RegionRecord identifies one administrative region.
type RegionRecord struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// DepartmentRecord belongs to exactly one region through RegionCode.
type DepartmentRecord struct {
	Code       string `json:"code" yaml:"code"`
	RegionCode string `json:"region_code" yaml:"region_code"`
	Name       string `json:"name" yaml:"name"`
}

// AreaRecord is one department carrying its parent region's identity.
// CodeDep is unique across an area table; CodeReg is not.
type AreaRecord struct {
	CodeReg string `json:"code_reg" yaml:"code_reg"`
	NameReg string `json:"name_reg" yaml:"name_reg"`
	CodeDep string `json:"code_dep" yaml:"code_dep"`
	NameDep string `json:"name_dep" yaml:"name_dep"`
}
