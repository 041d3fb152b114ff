package normalize

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// normalizeSecuritySchemes walks components.securitySchemes, producing
// api.SecuritySchemes. For Swagger 2.0 input, v2.go has already translated
// securityDefinitions into this same 3.x shape before this runs.
func normalizeSecuritySchemes(doc *openapi3.T, api *NormalizedAPI, report *Report) error {
	if doc.Components == nil {
		return nil
	}
	for name, ref := range doc.Components.SecuritySchemes {
		if ref == nil || ref.Value == nil {
			report.addWarning("security scheme %q has no value, skipped", name)
			continue
		}
		v := ref.Value
		scheme := &SecurityScheme{Name: name}
		switch v.Type {
		case "apiKey":
			scheme.Type = SecurityTypeAPIKey
			scheme.KeyName = v.Name
			scheme.KeyLocation = ParameterLocation(v.In)
		case "http":
			scheme.Type = SecurityTypeHTTP
			scheme.Scheme = v.Scheme
			scheme.BearerFormat = v.BearerFormat
		case "oauth2":
			scheme.Type = SecurityTypeOAuth2
			scheme.Flows = make(map[string]OAuth2Flow)
			if v.Flows != nil {
				if v.Flows.AuthorizationCode != nil {
					scheme.Flows["authorizationCode"] = toOAuth2Flow(v.Flows.AuthorizationCode)
				}
				if v.Flows.Implicit != nil {
					scheme.Flows["implicit"] = toOAuth2Flow(v.Flows.Implicit)
				}
				if v.Flows.Password != nil {
					scheme.Flows["password"] = toOAuth2Flow(v.Flows.Password)
				}
				if v.Flows.ClientCredentials != nil {
					scheme.Flows["clientCredentials"] = toOAuth2Flow(v.Flows.ClientCredentials)
				}
			}
		case "openIdConnect":
			scheme.Type = SecurityTypeOpenIDConnect
			scheme.OpenIDConnectURL = v.OpenIdConnectUrl
		case "mutualTLS":
			scheme.Type = SecurityTypeMutualTLS
		default:
			report.addWarning("unknown security scheme type %q for %q", v.Type, name)
			continue
		}
		api.SecuritySchemes[name] = scheme
	}
	return nil
}

func toOAuth2Flow(f *openapi3.OAuthFlow) OAuth2Flow {
	flow := OAuth2Flow{
		AuthorizationURL: f.AuthorizationURL,
		TokenURL:         f.TokenURL,
		RefreshURL:       f.RefreshURL,
		Scopes:           make(map[string]string),
	}
	for scope, desc := range f.Scopes {
		flow.Scopes[scope] = desc
	}
	return flow
}
