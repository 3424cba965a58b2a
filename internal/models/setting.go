package models

// Well-known setting keys.
const (
	SettingOrganizationName = "organization_name"
	SettingBranchName       = "branch_name"
	SettingSMSTemplate      = "sms_template"
	SettingTwilioSID        = "twilio_sid"
	SettingTwilioToken      = "twilio_token"
	SettingTwilioFrom       = "twilio_from"
	SettingTargetPrinter    = "target_printer"
)

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type UpdateSettingRequest struct {
	Key   string `json:"key" validate:"required,max=64"`
	Value string `json:"value" validate:"max=2000"`
}
