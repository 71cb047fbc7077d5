package expr

// helperLibrary is preloaded once into the shared heap at startup:
// firstToLower, removeFinalPeriod, selected, notSelected. Arrays of options must carry at least
// {index, label}; arrays of choices must carry at least {index}.
const helperLibrary = `
function firstToLower(x) {
  if (Array.isArray(x)) return x.map(firstToLower);
  if (typeof x !== "string" || x.length === 0) return x;
  return x.charAt(0).toLowerCase() + x.slice(1);
}

function removeFinalPeriod(x) {
  if (Array.isArray(x)) return x.map(removeFinalPeriod);
  if (typeof x !== "string") return x;
  if (x.length > 0 && x.charAt(x.length - 1) === ".") return x.slice(0, -1);
  return x;
}

function selected(options, choices) {
  if (!Array.isArray(options) || !Array.isArray(choices)) return [];
  var out = [];
  for (var i = 0; i < options.length; i++) {
    for (var j = 0; j < choices.length; j++) {
      if (choices[j].index === options[i].index) {
        out.push(options[i].label);
        break;
      }
    }
  }
  return out;
}

function notSelected(options, choices) {
  if (!Array.isArray(options)) return [];
  if (!Array.isArray(choices)) {
    return options.map(function (o) { return o.label; });
  }
  var out = [];
  for (var i = 0; i < options.length; i++) {
    var found = false;
    for (var j = 0; j < choices.length; j++) {
      if (choices[j].index === options[i].index) {
        found = true;
        break;
      }
    }
    if (!found) out.push(options[i].label);
  }
  return out;
}
`
