package authz

// defaultPolicies permit an action when the caller's scopes grant it
const defaultPolicies = `
permit(
  principal,
  action == Extrepo::Action::"read",
  resource
) when {
  principal.grantedActions.contains("read")
};

permit(
  principal,
  action == Extrepo::Action::"write",
  resource
) when {
  principal.grantedActions.contains("write")
};

permit(
  principal,
  action == Extrepo::Action::"admin",
  resource
) when {
  principal.grantedActions.contains("admin")
};
`
