package strcase

import "testing"

func TestSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Name", "name"},
		{"ID", "id"},
		{"CompanyName", "company_name"},
		{"EmployeeID", "employee_id"},
		{"HTTPTimeout", "http_timeout"},
		{"HTTPServer", "http_server"},
		{"BankDetails", "bank_details"},
		{"Address1", "address1"},
		{"ParseURL", "parse_url"},
		{"already_snake", "already_snake"},
		{"A", "a"},
		{"AB", "ab"},
		{"ABc", "a_bc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Snake(tt.in); got != tt.want {
				t.Errorf("Snake(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
