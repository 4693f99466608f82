package reference

import "testing"

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    bool
		wantErr bool
	}{
		{"パブリックIPのURL", "http://203.0.113.10/image.png", true, false},
		{"パブリックDNSのIP", "https://8.8.8.8/favicon.ico", true, false},

		{"不正なスキーム", "gopher://example.com", false, true},
		{"ループバックIP", "http://127.0.0.1/admin", false, true},
		{"localhost", "http://localhost/admin", false, true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", false, true},
		{"プライベートIP (クラスC)", "http://192.168.1.1/router", false, true},
		{"リンクローカル", "http://169.254.169.254/computeMetadata/v1/", false, true},
		{"未指定アドレス", "http://0.0.0.0/", false, true},
		{"パースできないURL", "://broken", false, true},
		{"名前解決できないドメイン", "http://this.should.not.exist.invalid", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			safe, err := IsSafeURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("IsSafeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if safe != tt.want {
				t.Errorf("IsSafeURL() = %v, want %v (%s)", safe, tt.want, tt.url)
			}
		})
	}
}
